package main

import (
	"sort"
	"strings"
)

// controlled vocabularies for the query parser and the filter model

const (
	audienceAdult      = "Adult"
	audienceAdultsOnly = "Adults Only"
	audienceYoungAdult = "Young Adult"
	audienceChildren   = "Children"
	audienceAllAges    = "All Ages"
	audienceResearch   = "Research"
)

const (
	fictionLabel    = "Fiction"
	nonfictionLabel = "Nonfiction"
)

const (
	mediumBook  = "Book"
	mediumAudio = "Audio"
)

// contributor roles considered authorship when matching an author query or filter
var authorMatchRoles = []string{
	"Primary Author",
	"Author",
	"Narrator",
}

// sentinel for contributors whose name was never established
const unknownAuthor = "[Unknown]"

// genre names recognized by the query parser. values are the canonical
// display names as they appear in the genres.name field.
var genreNames = []string{
	"Adventure",
	"Alternative History",
	"Biography & Memoir",
	"Business",
	"Classics",
	"Comics & Graphic Novels",
	"Computers",
	"Contemporary Romance",
	"Cooking",
	"Crafts & Hobbies",
	"Crime",
	"Dystopian SF",
	"Economics",
	"Epic Fantasy",
	"Erotica",
	"Espionage",
	"Fantasy",
	"Folklore",
	"Gardening",
	"Hard-Boiled Mystery",
	"Historical Fiction",
	"Historical Mystery",
	"Historical Romance",
	"History",
	"Horror",
	"Humorous Fiction",
	"Humorous Nonfiction",
	"Law",
	"Literary Criticism",
	"Literary Fiction",
	"Mathematics",
	"Medical",
	"Military History",
	"Military SF",
	"Music",
	"Mystery",
	"Nature",
	"Paranormal Mystery",
	"Paranormal Romance",
	"Parenting",
	"Personal Finance & Investing",
	"Philosophy",
	"Photography",
	"Poetry",
	"Police Procedural",
	"Political Science",
	"Psychology",
	"Religion & Spirituality",
	"Romance",
	"Romantic Suspense",
	"Science",
	"Science Fiction",
	"Self-Help",
	"Short Stories",
	"Space Opera",
	"Sports",
	"Steampunk",
	"Supernatural Thriller",
	"Suspense/Thriller",
	"Travel",
	"True Crime",
	"Urban Fantasy",
	"Urban Fiction",
	"Vampires",
	"Werewolves",
	"Westerns",
	"Women's Fiction",
	"World History",
}

// genreNamesByLength returns the recognized genre names longest-first, so
// "science fiction" is tried before "science" and "fiction".
func genreNamesByLength() []string {
	names := make([]string, len(genreNames))
	copy(names, genreNames)

	sort.SliceStable(names, func(i, j int) bool {
		return len(names[i]) > len(names[j])
	})

	return names
}

// audience phrasings, tried in order. longer phrasings come first so
// "young adult" wins over "adult".
var audiencePhrases = []struct {
	phrase   string
	audience string
}{
	{"children's", audienceChildren},
	{"young adult", audienceYoungAdult},
	{"adults only", audienceAdultsOnly},
	{"all ages", audienceAllAges},
	{"children", audienceChildren},
	{"teenagers", audienceYoungAdult},
	{"teens", audienceYoungAdult},
	{"teen", audienceYoungAdult},
	{"kids", audienceChildren},
	{"adult", audienceAdult},
	{"ya", audienceYoungAdult},
}

// gradeToAge converts a US school grade to the age of a typical student
// entering that grade. "k" is kindergarten.
func gradeToAge(grade string) (int, bool) {
	grade = strings.ToLower(strings.TrimSpace(grade))

	if grade == "k" || grade == "kindergarten" {
		return 5, true
	}

	if grade == "" {
		return 0, false
	}

	n := 0
	for _, r := range grade {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}

	if n > 12 {
		return 0, false
	}

	return n + 5, true
}
