package main

import "fmt"

// works index document shape and mapping. the mapping version is baked
// into the index name and the stored script name so that reindexing to a
// new scheme never collides with the old one.

const mappingVersion = 5

func versionedIndexName(base string) string {
	return fmt.Sprintf("%s-v%d", base, mappingVersion)
}

func workLastUpdateScriptName() string {
	return fmt.Sprintf("circulation.work_last_update.v%d", mappingVersion)
}

type contributorDocument struct {
	SortName    string `json:"sort_name,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role,omitempty"`
	Viaf        string `json:"viaf,omitempty"`
	Lc          string `json:"lc,omitempty"`
}

type licensepoolDocument struct {
	CollectionID     int64   `json:"collection_id"`
	DataSourceID     int64   `json:"data_source_id"`
	Medium           string  `json:"medium,omitempty"`
	Quality          float64 `json:"quality"`
	OpenAccess       bool    `json:"open_access"`
	Available        bool    `json:"available"`
	Licensed         bool    `json:"licensed"`
	Suppressed       bool    `json:"suppressed"`
	AvailabilityTime float64 `json:"availability_time,omitempty"`
}

type customlistDocument struct {
	ListID          int64   `json:"list_id"`
	Featured        bool    `json:"featured"`
	FirstAppearance float64 `json:"first_appearance,omitempty"`
}

type genreDocument struct {
	Scheme string  `json:"scheme,omitempty"`
	Name   string  `json:"name,omitempty"`
	Term   int64   `json:"term"`
	Weight float64 `json:"weight,omitempty"`
}

type identifierDocument struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type classificationDocument struct {
	Scheme string  `json:"scheme,omitempty"`
	Term   string  `json:"term,omitempty"`
	Weight float64 `json:"weight,omitempty"`
}

type targetAgeDocument struct {
	Lower *int `json:"lower,omitempty"`
	Upper *int `json:"upper,omitempty"`
}

type workDocument struct {
	WorkID            int64              `json:"work_id"`
	Title             string             `json:"title,omitempty"`
	Subtitle          string             `json:"subtitle,omitempty"`
	SortTitle         string             `json:"sort_title,omitempty"`
	Author            string             `json:"author,omitempty"`
	SortAuthor        string             `json:"sort_author,omitempty"`
	Series            string             `json:"series,omitempty"`
	SeriesPosition    *int               `json:"series_position,omitempty"`
	Medium            string             `json:"medium,omitempty"`
	Language          string             `json:"language,omitempty"`
	Publisher         string             `json:"publisher,omitempty"`
	Imprint           string             `json:"imprint,omitempty"`
	Audience          string             `json:"audience,omitempty"`
	Fiction           string             `json:"fiction,omitempty"`
	Summary           string             `json:"summary,omitempty"`
	Quality           float64            `json:"quality"`
	Random            float64            `json:"random"`
	PresentationReady bool               `json:"presentation_ready"`
	LastUpdateTime    float64            `json:"last_update_time,omitempty"`
	TargetAge         *targetAgeDocument `json:"target_age,omitempty"`

	Contributors    []contributorDocument    `json:"contributors,omitempty"`
	Licensepools    []licensepoolDocument    `json:"licensepools,omitempty"`
	Customlists     []customlistDocument     `json:"customlists,omitempty"`
	Genres          []genreDocument          `json:"genres,omitempty"`
	Identifiers     []identifierDocument     `json:"identifiers,omitempty"`
	Classifications []classificationDocument `json:"classifications,omitempty"`
}

// analyzed text fields get four variants: the stemmed base field, a
// keyword field for exact matches, a minimal (unstemmed) field, and for
// some fields a stopword-preserving one.
func textProperty(withStopwords bool) map[string]interface{} {
	fields := map[string]interface{}{
		"keyword": map[string]interface{}{
			"type":       "keyword",
			"normalizer": "filterable_string",
		},
		"minimal": map[string]interface{}{
			"type":     "text",
			"analyzer": "en_minimal_text_analyzer",
		},
	}

	if withStopwords {
		fields["with_stopwords"] = map[string]interface{}{
			"type":     "text",
			"analyzer": "en_with_stopwords_text_analyzer",
		}
	}

	return map[string]interface{}{
		"type":     "text",
		"analyzer": "en_default_text_analyzer",
		"fields":   fields,
	}
}

func keywordProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":       "keyword",
		"normalizer": "filterable_string",
	}
}

// worksIndexMapping returns the full index creation body: analysis chains
// plus document properties.
func worksIndexMapping() map[string]interface{} {
	contributorProps := map[string]interface{}{
		"sort_name":    textProperty(false),
		"display_name": textProperty(false),
		"role":         keywordProperty(),
		"viaf":         keywordProperty(),
		"lc":           keywordProperty(),
	}

	licensepoolProps := map[string]interface{}{
		"collection_id":     map[string]interface{}{"type": "long"},
		"data_source_id":    map[string]interface{}{"type": "long"},
		"medium":            keywordProperty(),
		"quality":           map[string]interface{}{"type": "float"},
		"open_access":       map[string]interface{}{"type": "boolean"},
		"available":         map[string]interface{}{"type": "boolean"},
		"licensed":          map[string]interface{}{"type": "boolean"},
		"suppressed":        map[string]interface{}{"type": "boolean"},
		"availability_time": map[string]interface{}{"type": "double"},
	}

	customlistProps := map[string]interface{}{
		"list_id":          map[string]interface{}{"type": "long"},
		"featured":         map[string]interface{}{"type": "boolean"},
		"first_appearance": map[string]interface{}{"type": "double"},
	}

	genreProps := map[string]interface{}{
		"scheme": keywordProperty(),
		"name":   keywordProperty(),
		"term":   map[string]interface{}{"type": "long"},
		"weight": map[string]interface{}{"type": "float"},
	}

	identifierProps := map[string]interface{}{
		"type":       keywordProperty(),
		"identifier": keywordProperty(),
	}

	classificationProps := map[string]interface{}{
		"scheme": keywordProperty(),
		"term":   textProperty(false),
		"weight": map[string]interface{}{"type": "float"},
	}

	properties := map[string]interface{}{
		"work_id":            map[string]interface{}{"type": "long"},
		"title":              textProperty(true),
		"subtitle":           textProperty(true),
		"sort_title":         keywordProperty(),
		"author":             textProperty(false),
		"sort_author":        keywordProperty(),
		"series":             textProperty(true),
		"series_position":    map[string]interface{}{"type": "integer"},
		"medium":             keywordProperty(),
		"language":           keywordProperty(),
		"publisher":          textProperty(false),
		"imprint":            textProperty(false),
		"audience":           keywordProperty(),
		"fiction":            keywordProperty(),
		"summary":            map[string]interface{}{"type": "text", "analyzer": "en_default_text_analyzer"},
		"quality":            map[string]interface{}{"type": "float"},
		"random":             map[string]interface{}{"type": "float"},
		"presentation_ready": map[string]interface{}{"type": "boolean"},
		"last_update_time":   map[string]interface{}{"type": "double"},
		"target_age": map[string]interface{}{
			"properties": map[string]interface{}{
				"lower": map[string]interface{}{"type": "integer"},
				"upper": map[string]interface{}{"type": "integer"},
			},
		},
		"contributors":    map[string]interface{}{"type": "nested", "properties": contributorProps},
		"licensepools":    map[string]interface{}{"type": "nested", "properties": licensepoolProps},
		"customlists":     map[string]interface{}{"type": "nested", "properties": customlistProps},
		"genres":          map[string]interface{}{"type": "nested", "properties": genreProps},
		"identifiers":     map[string]interface{}{"type": "nested", "properties": identifierProps},
		"classifications": map[string]interface{}{"type": "nested", "properties": classificationProps},
	}

	analysis := map[string]interface{}{
		"normalizer": map[string]interface{}{
			"filterable_string": map[string]interface{}{
				"type":   "custom",
				"filter": []string{"lowercase", "asciifolding"},
			},
		},
		"filter": map[string]interface{}{
			"en_stop_filter": map[string]interface{}{
				"type":      "stop",
				"stopwords": []string{"_english_"},
			},
			"en_stem_filter": map[string]interface{}{
				"type": "stemmer",
				"name": "english",
			},
		},
		"analyzer": map[string]interface{}{
			"en_default_text_analyzer": map[string]interface{}{
				"type":      "custom",
				"tokenizer": "standard",
				"filter":    []string{"lowercase", "asciifolding", "en_stop_filter", "en_stem_filter"},
			},
			"en_minimal_text_analyzer": map[string]interface{}{
				"type":      "custom",
				"tokenizer": "standard",
				"filter":    []string{"lowercase", "asciifolding", "en_stop_filter"},
			},
			"en_with_stopwords_text_analyzer": map[string]interface{}{
				"type":      "custom",
				"tokenizer": "standard",
				"filter":    []string{"lowercase", "asciifolding"},
			},
		},
	}

	return map[string]interface{}{
		"settings": map[string]interface{}{
			"analysis": analysis,
		},
		"mappings": map[string]interface{}{
			"properties": properties,
		},
	}
}

// workLastUpdateScript computes a work's effective last-update time given
// the collections and customlists in play: the latest of the work's own
// update time, its availability in any relevant collection, and its first
// appearance on any relevant list.
const workLastUpdateScript = `
double last = doc['last_update_time'].value;
if (params.collection_ids.length > 0) {
    for (def pool : params._source.licensepools) {
        if (params.collection_ids.contains(pool.collection_id)
            && pool.availability_time > last) {
            last = pool.availability_time;
        }
    }
}
if (params.list_ids.length > 0 && params._source.customlists != null) {
    for (def entry : params._source.customlists) {
        if (params.list_ids.contains(entry.list_id)
            && entry.first_appearance > last) {
            last = entry.first_appearance;
        }
    }
}
return last;
`
