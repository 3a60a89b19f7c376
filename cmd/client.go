package main

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

type clientOpts struct {
	debug   bool // controls whether debug info is added to search results
	verbose bool // controls whether full engine requests are logged
}

type clientContext struct {
	reqID       string          // internally generated
	start       time.Time       // internally set
	opts        clientOpts      // options set by client
	claims      *serviceClaims  // information about this user
	localizer   *i18n.Localizer // per-request localization
	ginCtx      *gin.Context    // gin context
	acceptLang  string          // first language requested by client
	contentLang string          // actual language we are responding with
}

func boolOptionWithFallback(opt string, fallback bool) bool {
	var err error
	var val bool

	if val, err = strconv.ParseBool(opt); err != nil {
		val = fallback
	}

	return val
}

func (c *clientContext) init(p *poolContext, ctx *gin.Context) {
	c.ginCtx = ctx

	c.start = time.Now()
	c.reqID = fmt.Sprintf("%08x", p.randomSource.Uint32())

	if ctx == nil {
		return
	}

	// get claims, if any
	if val, ok := ctx.Get("claims"); ok == true {
		c.claims = val.(*serviceClaims)
	}

	// determine client preferred language
	c.acceptLang = strings.Split(ctx.GetHeader("Accept-Language"), ",")[0]
	if c.acceptLang == "" {
		c.acceptLang = "en"
	}

	c.localizer = i18n.NewLocalizer(p.translations.bundle, c.acceptLang)

	// kludge to get the response language by checking the tag value returned for a known message ID
	_, tag, _ := c.localizer.LocalizeWithTag(&i18n.LocalizeConfig{MessageID: p.config.Identity.NameXID})
	c.contentLang = tag.String()

	ctx.Header("Content-Language", c.contentLang)

	c.opts.debug = boolOptionWithFallback(ctx.Query("debug"), false)
	c.opts.verbose = boolOptionWithFallback(ctx.Query("verbose"), false)
}

// requestValue reads a query parameter, falling back when absent.
func (c *clientContext) requestValue(name, fallback string) string {
	if c.ginCtx == nil {
		return fallback
	}

	if val := c.ginCtx.Query(name); val != "" {
		return val
	}

	return fallback
}

func (c *clientContext) logRequest() {
	c.log("------------------------------[ NEW REQUEST ]------------------------------")

	query := ""
	if c.ginCtx.Request.URL.RawQuery != "" {
		query = fmt.Sprintf("?%s", c.ginCtx.Request.URL.RawQuery)
	}

	claimsStr := ""
	if c.claims != nil {
		claimsStr = fmt.Sprintf("  [%s; %s]", c.claims.UserID, c.claims.Role)
	}

	c.log("[REQUEST] %s %s%s  (%s) => (%s)%s", c.ginCtx.Request.Method, c.ginCtx.Request.URL.Path, query, c.acceptLang, c.contentLang, claimsStr)
}

func (c *clientContext) logResponse(resp searchResponse) {
	if resp.err != nil {
		c.err("[RESPONSE] status: %d, error: %s", resp.status, resp.err.Error())
		return
	}

	c.log("[RESPONSE] status: %d", resp.status)
}

func (c *clientContext) printf(prefix, format string, args ...interface{}) {
	str := fmt.Sprintf(format, args...)

	if prefix != "" {
		str = strings.Join([]string{prefix, str}, " ")
	}

	log.Printf("[%s] %s", c.reqID, str)
}

func (c *clientContext) log(format string, args ...interface{}) {
	c.printf("", format, args...)
}

func (c *clientContext) err(format string, args ...interface{}) {
	c.printf("ERROR:", format, args...)
}

func (c *clientContext) localize(id string) string {
	return c.localizer.MustLocalize(&i18n.LocalizeConfig{MessageID: id})
}

func (c *clientContext) localizedPoolIdentity(p *poolContext) PoolIdentity {
	id := p.identity

	id.Name = c.localize(id.Name)
	id.Description = c.localize(id.Description)

	opts := make([]SortOption, len(id.SortOptions))
	copy(opts, id.SortOptions)

	for i := range opts {
		opts[i].Label = c.localize(opts[i].ID)
	}

	id.SortOptions = opts

	return id
}

func (c *clientContext) localizedProviders(p *poolContext) Providers {
	var providers Providers

	for _, val := range p.providers.Providers {
		opt := val

		opt.Label = c.localize(opt.Label)

		providers.Providers = append(providers.Providers, opt)
	}

	return providers
}

func (c *clientContext) isAdmin() bool {
	return c.claims != nil && c.claims.Role == "admin"
}
