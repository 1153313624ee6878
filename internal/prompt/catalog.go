// Package prompt turns agent form selections into the instruction text sent
// to the completion service. The option sets are declarative so the UI and
// CLI render them from /v1/options instead of hard-coding labels.
package prompt

// Option is one selectable entry: ID is what clients submit, Label is what
// they display, Effect is the sentence merged into the prompt.
type Option struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Effect string `json:"-"`
}

// Catalog is the full option set served to clients.
type Catalog struct {
	Intents []Option `json:"intents"`
	Tones   []Option `json:"tones"`
	Lengths []Option `json:"lengths"`
}

// Intents the agent can combine in one reply.
var Intents = []Option{
	{
		ID:     "explain_cause",
		Label:  "Explicar causa do problema",
		Effect: "Explain the cause of the problem described by the customer.",
	},
	{
		ID:     "offer_discount",
		Label:  "Oferecer desconto",
		Effect: "Offer the customer a discount on a future purchase.",
	},
	{
		ID:     "no_free_shipping",
		Label:  "Explicar que portes grátis não são possíveis nesta encomenda",
		Effect: "Explain that free shipping is not possible for this order.",
	},
	{
		ID:     "offer_replacement",
		Label:  "Oferecer uma substituição gratuita",
		Effect: "Offer a free replacement of the item.",
	},
}

// Tones adjust the register of the reply.
var Tones = []Option{
	{ID: "cordial", Label: "Cordial", Effect: "Use a warm, friendly tone."},
	{ID: "formal", Label: "Formal", Effect: "Use a formal, businesslike tone."},
	{ID: "neutro", Label: "Neutro", Effect: "Use a neutral, matter-of-fact tone."},
}

// Lengths bound the size of the reply.
var Lengths = []Option{
	{ID: "curta", Label: "Curta", Effect: "Keep the reply short, at most one paragraph."},
	{ID: "media", Label: "Média", Effect: "Keep the reply to two or three short paragraphs."},
	{ID: "longa", Label: "Longa", Effect: "A longer, more detailed reply is acceptable."},
}

// AvoidList are expressions the reply must never contain, per brand policy.
var AvoidList = []string{
	"desculpe",
	"desculpa",
	"a culpa é nossa",
	"negativo",
}

// DefaultCatalog returns the catalog served by /v1/options.
func DefaultCatalog() Catalog {
	return Catalog{Intents: Intents, Tones: Tones, Lengths: Lengths}
}

func findOption(opts []Option, id string) (Option, bool) {
	for _, o := range opts {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}
