package main

import (
	"fmt"
	"log"
	"math/rand"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// git commit used for this build; supplied at compile time
var gitCommit string

type poolVersion struct {
	BuildVersion string `json:"build,omitempty"`
	GoVersion    string `json:"go_version,omitempty"`
	GitCommit    string `json:"git_commit,omitempty"`
}

type poolElastic struct {
	client    *http.Client
	searchURL string
	bulkURL   string
	indexURL  string
	scriptURL string
	index     string
}

type poolTranslations struct {
	bundle *i18n.Bundle
}

type poolMaps struct {
	sortOrders map[string]string // sort option xid -> engine order name
}

type poolContext struct {
	randomSource *rand.Rand
	config       *poolConfig
	translations poolTranslations
	identity     PoolIdentity
	providers    Providers
	version      poolVersion
	es           poolElastic
	maps         poolMaps
	lex          lexicon
}

func (p *poolContext) initIdentity() {
	p.identity = PoolIdentity{
		Name:        p.config.Identity.NameXID,
		Description: p.config.Identity.DescXID,
		Mode:        p.config.Identity.Mode,
	}

	// create sort order map
	p.maps.sortOrders = make(map[string]string)
	for _, val := range p.config.Identity.SortOptions {
		p.identity.SortOptions = append(p.identity.SortOptions, SortOption{ID: val.XID})
		p.maps.sortOrders[val.XID] = val.Order
	}

	log.Printf("[POOL] identity.Name             = [%s]", p.identity.Name)
	log.Printf("[POOL] identity.Description      = [%s]", p.identity.Description)
	log.Printf("[POOL] identity.Mode             = [%s]", p.identity.Mode)
}

func (p *poolContext) initProviders() {
	for _, val := range p.config.Providers {
		provider := Provider{
			Provider:    val.Name,
			Label:       val.XID,
			LogoURL:     val.Logo,
			HomepageURL: val.URL,
		}

		p.providers.Providers = append(p.providers.Providers, provider)
	}
}

func (p *poolContext) initVersion() {
	buildVersion := "unknown"
	files, _ := filepath.Glob("buildtag.*")
	if len(files) == 1 {
		buildVersion = strings.Replace(files[0], "buildtag.", "", 1)
	}

	p.version = poolVersion{
		BuildVersion: buildVersion,
		GoVersion:    fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH),
		GitCommit:    gitCommit,
	}

	log.Printf("[POOL] version.BuildVersion      = [%s]", p.version.BuildVersion)
	log.Printf("[POOL] version.GoVersion         = [%s]", p.version.GoVersion)
	log.Printf("[POOL] version.GitCommit         = [%s]", p.version.GitCommit)
}

func (p *poolContext) initElastic() {
	// client setup

	connTimeout := timeoutWithMinimum(p.config.Elastic.ConnTimeout, 5)
	readTimeout := timeoutWithMinimum(p.config.Elastic.ReadTimeout, 5)

	esClient := &http.Client{
		Timeout: time.Duration(readTimeout) * time.Second,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   time.Duration(connTimeout) * time.Second,
				KeepAlive: 60 * time.Second,
			}).DialContext,
			MaxIdleConns:        100, // we are hitting one host, so
			MaxIdleConnsPerHost: 100, // these two values can be the same
			IdleConnTimeout:     90 * time.Second,
		},
	}

	index := versionedIndexName(p.config.Elastic.Index)
	host := strings.TrimRight(p.config.Elastic.Host, "/")

	p.es = poolElastic{
		client:    esClient,
		index:     index,
		searchURL: fmt.Sprintf("%s/%s/_search", host, index),
		bulkURL:   fmt.Sprintf("%s/%s/_bulk", host, index),
		indexURL:  fmt.Sprintf("%s/%s", host, index),
		scriptURL: fmt.Sprintf("%s/_scripts/%s", host, workLastUpdateScriptName()),
	}

	log.Printf("[POOL] es.searchURL              = [%s]", p.es.searchURL)

	if p.config.Elastic.ManageIndex == true {
		if err := p.ensureIndex(); err != nil {
			log.Printf("[POOL] WARNING: index setup failed: %s", err.Error())
		}
	}
}

func (p *poolContext) initLexicon() {
	p.lex = newBaseLexicon()
}

func (p *poolContext) initTranslations() {
	defaultLang := language.English

	bundle := i18n.NewBundle(defaultLang)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	tomlFiles, _ := filepath.Glob("i18n/*.toml")
	for _, f := range tomlFiles {
		bundle.MustLoadMessageFile(f)
	}

	p.translations = poolTranslations{
		bundle: bundle,
	}
}

func (p *poolContext) validateConfig() {
	// ensure the existence and validity of required variables and translation ids

	invalid := false

	var messageIDs stringValidator
	var miscValues stringValidator

	miscValues.requireValue(p.config.Service.Port, "service port")
	miscValues.requireValue(p.config.Service.JWTKey, "service jwt key")
	miscValues.requireValue(p.config.Elastic.Host, "elastic host")
	miscValues.requireValue(p.config.Elastic.Index, "elastic index")
	miscValues.requireValue(p.config.Identity.Mode, "pool mode")

	messageIDs.requireValue(p.config.Identity.NameXID, "identity name xid")
	messageIDs.requireValue(p.config.Identity.DescXID, "identity description xid")

	for i, val := range p.config.Identity.SortOptions {
		messageIDs.requireValue(val.XID, fmt.Sprintf("sort option %d xid", i))
		miscValues.requireValue(val.Order, fmt.Sprintf("sort option %d order", i))

		if val.Order != "" && !sliceContainsString(validSortOrders(), val.Order, false) {
			log.Printf("[VALIDATE] sort option %d order not valid: [%s]", i, val.Order)
			invalid = true
		}
	}

	for i, val := range p.config.Providers {
		messageIDs.requireValue(val.XID, fmt.Sprintf("provider %d xid", i))
	}

	if p.config.Search.MinimumFeaturedQuality < 0 || p.config.Search.MinimumFeaturedQuality > 1 {
		log.Printf("[VALIDATE] minimum featured quality must be within [0, 1]")
		invalid = true
	}

	// validate xids can actually be translated

	langs := []string{}
	tags := p.translations.bundle.LanguageTags()

	for _, tag := range tags {
		lang := tag.String()
		langs = append(langs, lang)
		localizer := i18n.NewLocalizer(p.translations.bundle, lang)
		for _, id := range messageIDs.Values() {
			if _, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: id}); err != nil {
				log.Printf("[VALIDATE] [%s] missing translation for message ID: [%s] (%s)", lang, id, err.Error())
				invalid = true
			}
		}
	}

	// check if anything went wrong anywhere

	if invalid || messageIDs.Invalid() || miscValues.Invalid() {
		log.Printf("[VALIDATE] exiting due to missing/incorrect field value(s) above")
		os.Exit(1)
	}

	log.Printf("[POOL] supported languages       = [%s]", strings.Join(langs, ", "))
}

func initializePool(cfg *poolConfig) *poolContext {
	p := poolContext{}

	p.config = cfg
	p.randomSource = rand.New(rand.NewSource(time.Now().UnixNano()))

	p.initTranslations()
	p.initIdentity()
	p.initProviders()
	p.initVersion()
	p.initLexicon()
	p.initElastic()

	p.validateConfig()

	return &p
}
