package main

import "strings"

// stopwords and the spelling lexicon used to pick the fuzzy match coefficient.
// a query made entirely of correctly spelled non-stopwords gets a reduced
// fuzzy weight; stopwords or unrecognized words bump it back to full weight.

// the standard english stopword set used by the index analyzers
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "if": true, "in": true,
	"into": true, "is": true, "it": true, "no": true, "not": true, "of": true,
	"on": true, "or": true, "such": true, "that": true, "the": true,
	"their": true, "then": true, "there": true, "these": true, "they": true,
	"this": true, "to": true, "was": true, "will": true, "with": true,
}

// lexicon decides whether a word is spelled correctly. the default is a
// small embedded word list; hosts with a real spellchecker can inject one.
type lexicon interface {
	Known(word string) bool
}

type baseLexicon struct {
	words map[string]bool
}

func newBaseLexicon() *baseLexicon {
	lex := &baseLexicon{words: make(map[string]bool)}

	for _, word := range strings.Fields(baseLexiconWords) {
		lex.words[word] = true
	}

	return lex
}

func (l *baseLexicon) Known(word string) bool {
	word = strings.ToLower(word)

	if stopwords[word] {
		return true
	}

	return l.words[word]
}

// common english words plus vocabulary that shows up constantly in catalog
// queries (titles, genres, grade levels). lowercase, whitespace separated.
const baseLexiconWords = `
about above across act action actor adult adventure africa african after
again against age ages ago air all almost alone along already also always
america american among ancient angel animal animals another answer any
anyone anything april army around art arts asia ask author autumn away baby
back bad ball band bank battle bear beautiful because become bed been before
began begin behind being believe bell below best better between big bird
birds birthday black blood blue boat body book books born both boy boys
brain brave bread break bright bring brother brothers brown build building
burn business call came camp can captain car care carry case castle cat
cats century certain chance change chapter character charlie check chicken
chief child children china chinese christmas church circle city civil class
classic clean clear climb close cloud club coast cold collection college
color come comic coming common complete computer cook cooking could country
county course court cover craft crazy crime cross crown cry culture cup
cut dance danger dangerous dark daughter dawn day days dead deal dear death
deep del demon desert design detective devil diary did die different dinner
dinosaur dinosaurs divorce do doctor does dog dogs don done door down dragon
dragons draw drawing dream dreams dress drink drive drop dust duty each
early earth east easy eat edge edition education eight elephant eleven
empire end enemy energy england english enough escape europe even evening
ever every everyone everything evil exam example except eye eyes face fact
fairy faith fall family famous fantasy far farm fast father fear feel feet
fell felt few field fifth fight final find fine finger fire first fish five
flight floor flower fly follow food foot force forest forever forget form
fortune four fourth fox france free french fresh friend friends frog from
front fruit full fun funny future galaxy game games garden gave general
george get ghost giant gift girl girls give glass go god goes going gold
golden gone good got grace grade grand grave great green grey ground group
grow guard guide gun guy had hair half hand hands happy hard harry has hat
have he head hear heart heaven heavy hell hello help her here hero hidden
hide high hill him his history hit hold hole holiday home honor hope horror
horse horses hot hour house how human hundred hunt hunter hurricane ice
idea image important inside iron island italian its jack james japan
japanese jazz john journey joy judge july jump june jungle just keep kept
key kid kill kind king kingdom kiss kitchen knew knight know known lady
lake land language large last late laugh law learn least leave left leg
legend less lesson let letter letters level library lie life light like
line lion list listen little live lives living london long look lord lose
loss lost lot love low luck lunch machine made magic make man many map
march mark market marriage master match math may me mean meat medical meet
memory men middle midnight might mile military milk million mind mine
minute miss mission modern moment money monkey monster month moon more
morning most mother mountain mouse mouth move movie mr mrs much murder
music must my mystery myth name nation nature near need never new next
nice night nine north nose note nothing novel now number nurse ocean off
office officer often old once one only open orange order other our out
outside over own page paint paper parent paris park part party pass past
path peace people perfect person phantom photo picture piece pig place
plan planet plant play please pocket poem point police poor power practice
present president pretty prince princess prison private prize problem
project promise public puppy purple put queen question quick quiet rabbit
race radio rain raise ran reach read reading ready real reason red remember
rest return revolution rich ride right ring rise river road rock roman
room rose round royal rule run running sad safe said sail salt same sand
save saw say school science sea search season second secret see seem seen
self sell send sense series serve set seven shadow shall share sharp she
sheep ship shoe shop short should show side sign silence silver simple
since sing sister sit six sky sleep small smart smile snake snow so social
society some someone something son song soon sound south space speak
special spell spider spirit sport spring spy stand star stars start state
station stay steel step still stone stop store storm story strange street
strong student study such summer sun super sure surprise sweet swim sword
table take tale talk tall teach teacher team tell ten test text than thank
them these thing things think third thirteen thought thousand three through
tiger time tiny today together told tomorrow tonight too took top touch
town toy train travel treasure tree trick trip trouble true truth try
turn twelve twenty twin two uncle under understand until up upon us use
vampire very view village visit voice wait walk wall want war warm watch
water wave way we weather week well went were west whale what wheel when
where which while white who whole why wide wife wild will win wind window
winter wish witch without wizard wolf woman women wonder wood word words
work world would write writing wrong year years yellow yes yesterday yet
you young your zero zoo
`
