package analyzer

import "strings"

// Aspect is one of the coarse review dimensions
type Aspect string

const (
	Food     Aspect = "food"
	Service  Aspect = "service"
	Value    Aspect = "value"
	Ambiance Aspect = "ambiance"
)

// Aspects lists every aspect in scoring order
var Aspects = []Aspect{Food, Service, Value, Ambiance}

// Lexicon holds the keyword sets used for aspect matching and the word
// list used for language detection. All entries are lowercase.
type Lexicon struct {
	aspects map[Aspect][]string
	spanish map[string]struct{}
}

var defaultAspectKeywords = map[Aspect][]string{
	Food: {
		"food", "dish", "meal", "taste", "flavor", "flavour", "delicious", "menu",
		"portion", "dessert", "fresh", "cooked", "tasty",
		"comida", "plato", "sabor", "delicios", "rico", "menú", "ración",
		"postre", "fresco", "cocina", "tapa",
	},
	Service: {
		"service", "staff", "waiter", "waitress", "server", "friendly", "attentive",
		"rude", "manager",
		"servicio", "personal", "camarer", "mesero", "mesera", "atención", "atencion",
		"amable", "atento", "trato",
	},
	Value: {
		"price", "value", "expensive", "cheap", "worth", "cost", "affordable",
		"overpriced", "bill",
		"precio", "caro", "barato", "barata", "valor", "vale la pena",
		"calidad-precio", "cuenta",
	},
	Ambiance: {
		"ambiance", "ambience", "atmosphere", "decor", "music", "vibe", "cozy",
		"noisy", "loud", "terrace", "interior",
		"ambiente", "decoración", "decoracion", "música", "musica", "acogedor",
		"ruido", "terraza",
	},
}

var defaultSpanishWords = []string{
	"el", "la", "los", "las", "un", "una", "unos", "unas", "de", "del", "al",
	"y", "que", "es", "son", "fue", "muy", "pero", "con", "por", "para", "sin",
	"lo", "se", "su", "sus", "nos", "mas", "más", "también", "tambien", "como",
	"este", "esta", "todo", "bien", "bueno", "buena", "mucho", "donde",
	"comida", "servicio", "ambiente", "precio", "sitio", "lugar", "excelente",
}

// DefaultLexicon returns the built-in English and Spanish keyword sets
func DefaultLexicon() *Lexicon {
	return NewLexicon(nil, nil)
}

// NewLexicon builds a lexicon from overrides. An aspect missing from
// aspects keeps its default keywords; an empty spanish list keeps the
// default word list.
func NewLexicon(aspects map[string][]string, spanish []string) *Lexicon {
	lex := &Lexicon{
		aspects: make(map[Aspect][]string, len(Aspects)),
		spanish: make(map[string]struct{}),
	}

	for _, a := range Aspects {
		keywords := defaultAspectKeywords[a]
		if override, ok := aspects[string(a)]; ok && len(override) > 0 {
			keywords = override
		}
		lex.aspects[a] = lowerAll(keywords)
	}

	if len(spanish) == 0 {
		spanish = defaultSpanishWords
	}
	for _, w := range spanish {
		lex.spanish[strings.ToLower(w)] = struct{}{}
	}

	return lex
}

// Keywords returns the keywords of one aspect
func (l *Lexicon) Keywords(a Aspect) []string {
	return l.aspects[a]
}

// IsSpanish reports whether a lowercase token is in the Spanish word list
func (l *Lexicon) IsSpanish(token string) bool {
	_, ok := l.spanish[token]
	return ok
}

func lowerAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}
