// Package config holds the versioned conversion bundle: the rule
// tables and policy switches that make the converter reusable across
// projects with different semantic conventions. A built Bundle is
// immutable and safe to share between any number of concurrent
// conversions.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rohmanhakim/richtext-converter/internal/attrs"
	"github.com/rohmanhakim/richtext-converter/internal/classify"
	"github.com/rohmanhakim/richtext-converter/internal/marks"
	"github.com/rohmanhakim/richtext-converter/internal/quarantine"
	"github.com/rohmanhakim/richtext-converter/internal/walker"
)

type Bundle struct {
	//===============
	// Identity
	//===============
	// Version labels the rule bundle so converted documents can be
	// traced back to the exact conventions that produced them.
	version string

	//===============
	// Rule tables
	//===============
	// Inline tag → mark kind rules, consulted in declared order.
	markRules []marks.Rule
	// Ordered block disambiguation rules; first match wins.
	blockRules []classify.Rule
	// Registered embed schemas for data-attribute extraction.
	embedSchemas []attrs.Schema

	//===============
	// Safety policy
	//===============
	// Element names removed from the stream and reported for review.
	scriptDenylist []string
	// When true, any quarantine finding fails the whole document,
	// forcing manual handling.
	strictQuarantine bool

	//===============
	// Limits & shape
	//===============
	// Maximum element nesting depth before conversion aborts.
	maxDepth int
	// Maximum number of cells a single table may produce.
	maxTableCells int
	// Keep blocks that end up with no children and no attributes.
	preserveEmpty bool
}

type bundleDTO struct {
	Version          string          `json:"version"`
	MarkRules        []marks.Rule    `json:"markRules,omitempty"`
	BlockRules       []classify.Rule `json:"blockDisambiguationRules,omitempty"`
	EmbedSchemas     []attrs.Schema  `json:"embedSchemas,omitempty"`
	ScriptDenylist   []string        `json:"scriptDenylist,omitempty"`
	StrictQuarantine bool            `json:"strictQuarantine,omitempty"`
	MaxDepth         int             `json:"maxDepth,omitempty"`
	MaxTableCells    int             `json:"maxTableCells,omitempty"`
	PreserveEmpty    bool            `json:"preserveEmpty,omitempty"`
}

func newBundleFromDTO(dto bundleDTO) (Bundle, error) {
	b := WithDefault()

	if dto.Version != "" {
		b.version = dto.Version
	}
	// Configured mark rules extend the defaults rather than replacing
	// them: project conventions add custom kinds, the baseline tag
	// table stays.
	if len(dto.MarkRules) > 0 {
		b.markRules = append(append([]marks.Rule{}, dto.MarkRules...), b.markRules...)
	}
	b.blockRules = dto.BlockRules
	b.embedSchemas = dto.EmbedSchemas
	if len(dto.ScriptDenylist) > 0 {
		b.scriptDenylist = dto.ScriptDenylist
	}
	b.strictQuarantine = dto.StrictQuarantine
	if dto.MaxDepth != 0 {
		b.maxDepth = dto.MaxDepth
	}
	if dto.MaxTableCells != 0 {
		b.maxTableCells = dto.MaxTableCells
	}
	b.preserveEmpty = dto.PreserveEmpty

	return b.Build()
}

func WithConfigFile(path string) (Bundle, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Bundle{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return Bundle{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}

	dto := bundleDTO{}
	if err := json.Unmarshal(content, &dto); err != nil {
		return Bundle{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	return newBundleFromDTO(dto)
}

// WithDefault creates a Bundle with the baseline mark rules, the
// default script denylist, no disambiguation rules and no embed
// schemas.
func WithDefault() *Bundle {
	return &Bundle{
		version:        "default",
		markRules:      marks.DefaultRules(),
		scriptDenylist: quarantine.DefaultTags(),
		maxDepth:       walker.DefaultMaxDepth,
		maxTableCells:  4096,
	}
}

func (b *Bundle) WithVersion(version string) *Bundle {
	b.version = version
	return b
}

func (b *Bundle) WithMarkRules(rules []marks.Rule) *Bundle {
	b.markRules = rules
	return b
}

func (b *Bundle) WithBlockRules(rules []classify.Rule) *Bundle {
	b.blockRules = rules
	return b
}

func (b *Bundle) WithEmbedSchemas(schemas []attrs.Schema) *Bundle {
	b.embedSchemas = schemas
	return b
}

func (b *Bundle) WithScriptDenylist(tags []string) *Bundle {
	b.scriptDenylist = tags
	return b
}

func (b *Bundle) WithStrictQuarantine(strict bool) *Bundle {
	b.strictQuarantine = strict
	return b
}

func (b *Bundle) WithMaxDepth(depth int) *Bundle {
	b.maxDepth = depth
	return b
}

func (b *Bundle) WithMaxTableCells(cells int) *Bundle {
	b.maxTableCells = cells
	return b
}

func (b *Bundle) WithPreserveEmpty(preserve bool) *Bundle {
	b.preserveEmpty = preserve
	return b
}

func (b *Bundle) Build() (Bundle, error) {
	if b.maxDepth <= 0 {
		return Bundle{}, fmt.Errorf("%w: maxDepth must be positive", ErrInvalidConfig)
	}
	if b.maxTableCells <= 0 {
		return Bundle{}, fmt.Errorf("%w: maxTableCells must be positive", ErrInvalidConfig)
	}
	for _, r := range b.markRules {
		if r.Tag == "" || r.Kind == "" {
			return Bundle{}, fmt.Errorf("%w: mark rule needs both tag and kind", ErrInvalidConfig)
		}
	}
	for _, s := range b.embedSchemas {
		if s.Type == "" || len(s.Fields) == 0 {
			return Bundle{}, fmt.Errorf("%w: embed schema needs a type and at least one field", ErrInvalidConfig)
		}
	}
	// Compile once to reject bad selectors at load time instead of at
	// the first conversion.
	if _, err := classify.NewRuleSet(b.blockRules); err != nil {
		return Bundle{}, fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
	}

	return *b, nil
}

func (b Bundle) Version() string {
	return b.version
}

func (b Bundle) MarkRules() []marks.Rule {
	rules := make([]marks.Rule, len(b.markRules))
	copy(rules, b.markRules)
	return rules
}

func (b Bundle) BlockRules() []classify.Rule {
	rules := make([]classify.Rule, len(b.blockRules))
	copy(rules, b.blockRules)
	return rules
}

func (b Bundle) EmbedSchemas() []attrs.Schema {
	schemas := make([]attrs.Schema, len(b.embedSchemas))
	copy(schemas, b.embedSchemas)
	return schemas
}

func (b Bundle) ScriptDenylist() []string {
	tags := make([]string, len(b.scriptDenylist))
	copy(tags, b.scriptDenylist)
	return tags
}

func (b Bundle) StrictQuarantine() bool {
	return b.strictQuarantine
}

func (b Bundle) MaxDepth() int {
	return b.maxDepth
}

func (b Bundle) MaxTableCells() int {
	return b.maxTableCells
}

func (b Bundle) PreserveEmpty() bool {
	return b.preserveEmpty
}
