package compiler

import (
	"fmt"
	"strings"
)

// DefaultAuthor labels artifacts of programs without an owner.
const DefaultAuthor = "Kindling"

// TemplateVersion is the code template format version.
const TemplateVersion = 1

// Program is an ordered set of code lines with an optional owner.
// Compiling or delivering a Program does not modify it.
type Program struct {
	Lines []*CodeLine
	Owner string
}

// NewProgram creates a program from the given lines.
func NewProgram(lines ...*CodeLine) *Program {
	return &Program{Lines: lines}
}

// Author returns the owner label, or DefaultAuthor when unset.
func (p *Program) Author() string {
	if p.Owner == "" {
		return DefaultAuthor
	}
	return p.Owner
}

// Validate checks the bracket structure of every line.
func (p *Program) Validate() error {
	for i, l := range p.Lines {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("line %d: %w", i, err)
		}
	}
	return nil
}

// Artifact is one compiled code line with the labels it is delivered under.
type Artifact struct {
	Author  string
	Name    string
	Payload string
}

// Artifacts compiles every line, in order.
func (p *Program) Artifacts() ([]Artifact, error) {
	out := make([]Artifact, 0, len(p.Lines))
	for i, l := range p.Lines {
		payload, err := l.Compile()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		out = append(out, Artifact{
			Author:  p.Author(),
			Name:    l.Name(),
			Payload: payload,
		})
	}
	return out, nil
}

// Compile returns one /give command per line.
func (p *Program) Compile() ([]string, error) {
	arts, err := p.Artifacts()
	if err != nil {
		return nil, err
	}
	cmds := make([]string, len(arts))
	for i, a := range arts {
		cmds[i] = a.GiveCommand()
	}
	return cmds, nil
}

// ---------------------------------------------------------------------------
// Item templates
// ---------------------------------------------------------------------------

// TemplateData is the code template JSON carried by the item. Author and
// name are escaped, so any label is safe.
func (a Artifact) TemplateData() string {
	return fmt.Sprintf(`{"author":%s,"name":%s,"version":%d,"code":%s}`,
		quoteJSON(a.Author), quoteJSON(a.coloredName()), TemplateVersion, quoteJSON(a.Payload))
}

// ItemTag is the NBT compound of the ender chest item holding the template.
func (a Artifact) ItemTag() string {
	display := `{"extra":[` +
		`{"italic":false,"color":"#FF8855","text":"Compiled "},` +
		`{"italic":false,"color":"dark_gray","text":"» "},` +
		`{"italic":false,"color":"#FFCC99","text":` + quoteJSON(a.Name) + `}` +
		`],"text":""}`

	var b strings.Builder
	b.WriteString(`{display:{Name:`)
	b.WriteString(quoteSNBT(display))
	b.WriteString(`},PublicBukkitValues:{"hypercube:codetemplatedata":`)
	b.WriteString(quoteSNBT(a.TemplateData()))
	b.WriteString(`}}`)
	return b.String()
}

// ItemNBT is the full item stack NBT, as accepted by the companion process.
func (a Artifact) ItemNBT() string {
	return `{"id":"minecraft:ender_chest","Count":1,"tag":` + a.ItemTag() + `}`
}

// GiveCommand is the chat command that gives the template item.
func (a Artifact) GiveCommand() string {
	return "/give @p ender_chest" + a.ItemTag()
}

func (a Artifact) coloredName() string {
	return "&x&f&f&8&8&5&5Compiled &8» &x&f&f&c&c&9&9" + a.Name
}

// quoteJSON returns v as a JSON string literal.
func quoteJSON(v string) string {
	s := &serializer{}
	s.writeQuoted(v)
	return string(s.buf)
}

// quoteSNBT wraps v in single quotes for an NBT string, escaping
// backslashes and single quotes.
func quoteSNBT(v string) string {
	var b strings.Builder
	b.Grow(len(v) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(v); i++ {
		if c := v[i]; c == '\\' || c == '\'' {
			b.WriteByte('\\')
		}
		b.WriteByte(v[i])
	}
	b.WriteByte('\'')
	return b.String()
}
