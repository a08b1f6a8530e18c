package strategy

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nvandessel/dilemma/internal/constants"
	"github.com/nvandessel/dilemma/internal/game"
)

// RandomPrefix is the registry name of KindRandom. A float suffix sets the
// cooperation probability, e.g. "RandomStrategy0.3".
const RandomPrefix = "RandomStrategy"

// Info describes one registry entry.
type Info struct {
	Name        string  `json:"name"`
	Kind        Kind    `json:"-"`
	Complexity  float64 `json:"complexity"`
	Reason      string  `json:"complexity_reason"`
	Description string  `json:"description"`
}

var catalogue = []Info{
	{"AllCooperate", KindAllCooperate, 1.0, "no memory, fixed output", "always cooperates"},
	{"AllDefect", KindAllDefect, 1.0, "no memory, fixed output", "always defects"},
	{"TitForTat", KindTitForTat, 2.0, "one-round memory", "cooperates first, then copies the opponent's last move"},
	{"GrimTrigger", KindGrimTrigger, 2.5, "trigger state tracking", "cooperates until the opponent defects once, then defects forever"},
	{"PAVLOV", KindPavlov, 2.0, "one-round memory of both moves", "win-stay, lose-shift"},
	{"ContriteTitForTat", KindContriteTitForTat, 3.5, "noise handling with intent tracking", "tit-for-tat that accepts punishment for its own accidental defections"},
	{"PROBER", KindProber, 3.5, "multi-round probing and classification", "opens D,C,C then exploits unretaliating opponents or plays tit-for-tat"},
	{RandomPrefix, KindRandom, 1.0, "no memory, stochastic output", "cooperates with a fixed probability (RandomStrategy<p>, default 0.5)"},
}

// aliases are the short names of earlier revisions of the simulator.
var aliases = map[string]string{
	"ALLC": "AllCooperate",
	"ALLD": "AllDefect",
	"TFT":  "TitForTat",
	"GRIM": "GrimTrigger",
	"WSLS": "PAVLOV",
	"CTFT": "ContriteTitForTat",
}

// Exploiters lists the strategies that try to take advantage of
// unconditional cooperators, in the order mixed-population analysis
// looks for them.
func Exploiters() []string {
	return []string{"PROBER", "AllDefect"}
}

// Catalogue returns the registry entries in display order.
func Catalogue() []Info {
	out := make([]Info, len(catalogue))
	copy(out, catalogue)
	return out
}

func complexityOf(k Kind) float64 {
	for _, info := range catalogue {
		if info.Kind == k {
			return info.Complexity
		}
	}
	panic(fmt.Sprintf("strategy: kind %d missing from catalogue", int(k)))
}

// InfoFor returns the registry entry of a kind.
func InfoFor(k Kind) Info {
	for _, info := range catalogue {
		if info.Kind == k {
			return info
		}
	}
	panic(fmt.Sprintf("strategy: kind %d missing from catalogue", int(k)))
}

// Parse resolves a registry token into its canonical name, kind and
// parameters. Unknown names and malformed parameters yield a
// *game.ConfigurationError naming the offending token.
func Parse(token string) (name string, kind Kind, params Params, err error) {
	token = strings.TrimSpace(token)
	if canonical, ok := aliases[token]; ok {
		token = canonical
	}

	if strings.HasPrefix(token, RandomPrefix) {
		suffix := strings.TrimPrefix(token, RandomPrefix)
		if suffix == "" {
			return token, KindRandom, Params{Cooperation: constants.DefaultRandomCooperation}, nil
		}
		p, perr := strconv.ParseFloat(suffix, 64)
		if perr != nil || math.IsNaN(p) {
			return "", 0, Params{}, &game.ConfigurationError{
				Field: "strategy_names", Token: token,
				Reason: fmt.Sprintf("invalid cooperation probability %q", suffix),
			}
		}
		if p < 0 || p > 1 {
			return "", 0, Params{}, &game.ConfigurationError{
				Field: "strategy_names", Token: token,
				Reason: fmt.Sprintf("cooperation probability %s outside [0, 1]", suffix),
			}
		}
		return token, KindRandom, Params{Cooperation: p}, nil
	}

	for _, info := range catalogue {
		if info.Name == token && info.Kind != KindRandom {
			return info.Name, info.Kind, Params{}, nil
		}
	}
	return "", 0, Params{}, &game.ConfigurationError{
		Field: "strategy_names", Token: token, Reason: "unknown strategy",
	}
}

// New builds one instance from a registry token.
func New(token string, seed uint64) (*Strategy, error) {
	name, kind, params, err := Parse(token)
	if err != nil {
		return nil, err
	}
	return newStrategy(name, kind, params, seed), nil
}

// NewRoster builds the participants of a run. It requires at least two
// distinct strategies and derives each instance's seed from the run seed
// and its position, so no two instances share a stream.
func NewRoster(tokens []string, seed int64) ([]*Strategy, error) {
	if len(tokens) < 2 {
		return nil, &game.ConfigurationError{
			Field:  "strategy_names",
			Reason: fmt.Sprintf("a tournament requires at least two strategies, got %d", len(tokens)),
		}
	}

	seen := make(map[string]bool, len(tokens))
	roster := make([]*Strategy, 0, len(tokens))
	for i, tok := range tokens {
		s, err := New(tok, DeriveSeed(seed, i))
		if err != nil {
			return nil, err
		}
		if seen[s.Name()] {
			return nil, &game.ConfigurationError{
				Field: "strategy_names", Token: tok, Reason: "duplicate strategy",
			}
		}
		seen[s.Name()] = true
		roster = append(roster, s)
	}
	return roster, nil
}

// Names returns the names of a roster in order.
func Names(roster []*Strategy) []string {
	names := make([]string, len(roster))
	for i, s := range roster {
		names[i] = s.Name()
	}
	return names
}

// RewindAll rewinds every instance of a roster.
func RewindAll(roster []*Strategy) {
	for _, s := range roster {
		s.Rewind()
	}
}
