package main

import (
	"bytes"
	"encoding/json"
	"log"
	"os"
	"sort"
	"strings"
)

type poolConfigService struct {
	Port   string `json:"port,omitempty"`
	JWTKey string `json:"jwt_key,omitempty"`
}

type poolConfigElastic struct {
	Host        string `json:"host,omitempty"`
	Index       string `json:"index,omitempty"` // base name; mapping version is appended
	ConnTimeout string `json:"conn_timeout,omitempty"`
	ReadTimeout string `json:"read_timeout,omitempty"`

	// create the index and register stored scripts at startup
	ManageIndex bool `json:"manage_index,omitempty"`
}

type poolConfigSearch struct {
	DefaultPageSize        int     `json:"default_page_size,omitempty"`
	DisableFuzzy           bool    `json:"disable_fuzzy,omitempty"`
	MinimumFeaturedQuality float64 `json:"minimum_featured_quality,omitempty"`
}

type poolConfigSortOption struct {
	XID   string `json:"xid,omitempty"` // translation ID
	Order string `json:"order,omitempty"`
}

type poolConfigIdentity struct {
	NameXID     string                 `json:"name_xid,omitempty"` // translation ID
	DescXID     string                 `json:"desc_xid,omitempty"` // translation ID
	Mode        string                 `json:"mode,omitempty"`
	SortOptions []poolConfigSortOption `json:"sort_options,omitempty"`
}

type poolConfigProvider struct {
	Name string `json:"name,omitempty"`
	XID  string `json:"xid,omitempty"` // translation ID
	URL  string `json:"url,omitempty"`
	Logo string `json:"logo,omitempty"`
}

type poolConfig struct {
	Identity  poolConfigIdentity   `json:"identity,omitempty"`
	Service   poolConfigService    `json:"service,omitempty"`
	Elastic   poolConfigElastic    `json:"elastic,omitempty"`
	Search    poolConfigSearch     `json:"search,omitempty"`
	Providers []poolConfigProvider `json:"providers,omitempty"`
}

func getSortedJSONEnvVars() []string {
	var keys []string

	for _, keyval := range os.Environ() {
		key := strings.Split(keyval, "=")[0]
		if strings.HasPrefix(key, "CIRC_SEARCH_WS_JSON_") {
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)

	return keys
}

func loadConfig() *poolConfig {
	cfg := poolConfig{}

	// json configs

	envs := getSortedJSONEnvVars()

	valid := true

	for _, env := range envs {
		log.Printf("[CONFIG] loading %s ...", env)
		if val := os.Getenv(env); val != "" {
			dec := json.NewDecoder(bytes.NewReader([]byte(val)))
			dec.DisallowUnknownFields()

			if err := dec.Decode(&cfg); err != nil {
				log.Printf("error decoding %s: %s", env, err.Error())
				valid = false
			}
		}
	}

	if valid == false {
		log.Printf("exiting due to json decode error(s) above")
		os.Exit(1)
	}

	// optional convenience override to simplify deployment config
	if host := os.Getenv("CIRC_SEARCH_WS_ES_HOST"); host != "" {
		cfg.Elastic.Host = host
	}

	composite, err := json.Marshal(cfg)
	if err != nil {
		log.Printf("error encoding pool config json: %s", err.Error())
		os.Exit(1)
	}

	log.Printf("[CONFIG] composite json:")
	log.Printf("\n%s", string(composite))

	return &cfg
}
