package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/chazu/kindling/compiler"
)

// ProgramFile is the TOML description of a program:
//
//	owner = "builder"
//
//	[[line]]
//	[[line.statement]]
//	kind = "player_event"
//	event = "Join"
//
//	[[line.statement]]
//	kind = "player_action"
//	action = "SendMessage"
//	target = "AllPlayers"
//	[[line.statement.param]]
//	text = "hello"
type ProgramFile struct {
	Owner string    `toml:"owner"`
	Lines []LineDef `toml:"line"`
}

// LineDef describes one code line.
type LineDef struct {
	Statements []StatementDef `toml:"statement"`
}

// StatementDef describes one statement. Which fields apply depends on Kind.
type StatementDef struct {
	Kind      string     `toml:"kind"`
	Event     string     `toml:"event"`
	Name      string     `toml:"name"`
	Action    string     `toml:"action"`
	SubAction string     `toml:"sub_action"`
	Target    string     `toml:"target"`
	Not       bool       `toml:"not"`
	Params    []ValueDef `toml:"param"`
	Tags      []TagDef   `toml:"tag"`
}

// ValueDef describes one positional value. Exactly one field must be set.
type ValueDef struct {
	Text      *string       `toml:"text"`
	Number    *float64      `toml:"number"`
	Location  []float64     `toml:"loc"`
	Vector    []float64     `toml:"vec"`
	Sound     *SoundDef     `toml:"sound"`
	Potion    *PotionDef    `toml:"potion"`
	Variable  *VariableDef  `toml:"var"`
	GameValue *GameValueDef `toml:"game_value"`
}

// SoundDef describes a sound value.
type SoundDef struct {
	Name   string  `toml:"name"`
	Pitch  float64 `toml:"pitch"`
	Volume float64 `toml:"volume"`
}

// PotionDef describes a potion value.
type PotionDef struct {
	Effect    string `toml:"effect"`
	Ticks     uint64 `toml:"ticks"`
	Amplifier int16  `toml:"amplifier"`
}

// VariableDef describes a variable reference.
type VariableDef struct {
	Name  string `toml:"name"`
	Scope string `toml:"scope"`
}

// GameValueDef describes a game value.
type GameValueDef struct {
	Name   string `toml:"name"`
	Target string `toml:"target"`
}

// TagDef describes a block tag.
type TagDef struct {
	Name     string       `toml:"name"`
	Option   string       `toml:"option"`
	Variable *VariableDef `toml:"var"`
}

// NamedProgram is a program together with the file it was loaded from.
type NamedProgram struct {
	Path    string
	Program *compiler.Program
}

// LoadProgram decodes a program description file. Unknown keys are errors.
func LoadProgram(path string) (*compiler.Program, error) {
	var pf ProgramFile
	md, err := toml.DecodeFile(path, &pf)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if und := md.Undecoded(); len(und) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, und[0].String())
	}
	p, err := pf.Program()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParseProgram decodes a program description from TOML text.
func ParseProgram(data string) (*compiler.Program, error) {
	var pf ProgramFile
	md, err := toml.Decode(data, &pf)
	if err != nil {
		return nil, err
	}
	if und := md.Undecoded(); len(und) > 0 {
		return nil, fmt.Errorf("unknown key %q", und[0].String())
	}
	return pf.Program()
}

// LoadPrograms loads every *.toml file in the source directories, sorted by
// path. Programs without an owner take the project owner.
func (m *Manifest) LoadPrograms() ([]NamedProgram, error) {
	var paths []string
	for _, dir := range m.SourceDirPaths() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("cannot read source dir %s: %w", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".toml") {
				continue
			}
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	var out []NamedProgram
	for _, path := range paths {
		p, err := LoadProgram(path)
		if err != nil {
			return nil, err
		}
		if p.Owner == "" {
			p.Owner = m.Project.Owner
		}
		out = append(out, NamedProgram{Path: path, Program: p})
	}
	return out, nil
}

// Program converts the description into a compiler.Program.
func (pf *ProgramFile) Program() (*compiler.Program, error) {
	p := &compiler.Program{Owner: pf.Owner}
	for i, ld := range pf.Lines {
		line := &compiler.CodeLine{}
		for j, sd := range ld.Statements {
			stmt, err := sd.Statement()
			if err != nil {
				return nil, fmt.Errorf("line %d statement %d: %w", i, j, err)
			}
			line.Statements = append(line.Statements, stmt)
		}
		p.Lines = append(p.Lines, line)
	}
	return p, nil
}

// Statement converts the description into a compiler.Statement.
func (sd *StatementDef) Statement() (compiler.Statement, error) {
	target, ok := compiler.ParseSelector(sd.Target)
	if !ok {
		return nil, fmt.Errorf("unknown target %q", sd.Target)
	}

	var params compiler.Params
	switch sd.Kind {
	case "player_event", "entity_event", "else", "close", "close_repeat":
		if len(sd.Params) > 0 || len(sd.Tags) > 0 {
			return nil, fmt.Errorf("%s takes no parameters", sd.Kind)
		}
	default:
		b := compiler.NewParams()
		for k, vd := range sd.Params {
			v, err := vd.Value()
			if err != nil {
				return nil, fmt.Errorf("param %d: %w", k, err)
			}
			b.Param(v)
		}
		for k, td := range sd.Tags {
			tag, err := td.Tag()
			if err != nil {
				return nil, fmt.Errorf("tag %d: %w", k, err)
			}
			b.Tag(tag)
		}
		var err error
		if params, err = b.Build(); err != nil {
			return nil, err
		}
	}

	switch sd.Kind {
	case "player_event":
		return &compiler.PlayerEvent{Event: sd.Event}, nil
	case "entity_event":
		return &compiler.EntityEvent{Event: sd.Event}, nil
	case "function":
		return &compiler.Function{Name: sd.Name, Params: params}, nil
	case "process":
		return &compiler.Process{Name: sd.Name, Params: params}, nil
	case "player_action":
		return &compiler.PlayerAction{Action: sd.Action, Params: params, Target: target}, nil
	case "entity_action":
		return &compiler.EntityAction{Action: sd.Action, Params: params, Target: target}, nil
	case "set_var":
		return &compiler.SetVariable{Action: sd.Action, Params: params}, nil
	case "game_action":
		return &compiler.GameAction{Action: sd.Action, Params: params}, nil
	case "control":
		return &compiler.Control{Action: sd.Action, Params: params}, nil
	case "select_obj":
		return &compiler.SelectObject{Action: sd.Action, SubAction: sd.SubAction, Params: params, Not: sd.Not}, nil
	case "if_var":
		return &compiler.IfVariable{Action: sd.Action, Params: params, Not: sd.Not}, nil
	case "if_player":
		return &compiler.IfPlayer{Action: sd.Action, Params: params, Target: target, Not: sd.Not}, nil
	case "if_entity":
		return &compiler.IfEntity{Action: sd.Action, Params: params, Target: target, Not: sd.Not}, nil
	case "if_game":
		return &compiler.IfGame{Action: sd.Action, Params: params, Not: sd.Not}, nil
	case "else":
		return &compiler.Else{}, nil
	case "close":
		return &compiler.Close{}, nil
	case "close_repeat":
		return &compiler.CloseRepeat{}, nil
	case "repeat":
		return &compiler.Repeat{Action: sd.Action, SubAction: sd.SubAction, Params: params, Not: sd.Not}, nil
	case "call_func":
		return &compiler.CallFunction{Name: sd.Name, Params: params}, nil
	case "start_process":
		return &compiler.CallProcess{Name: sd.Name, Params: params}, nil
	case "":
		return nil, fmt.Errorf("missing statement kind")
	}
	return nil, fmt.Errorf("unknown statement kind %q", sd.Kind)
}

// Value converts the description into a compiler.Value.
func (vd *ValueDef) Value() (compiler.Value, error) {
	var out []compiler.Value
	if vd.Text != nil {
		out = append(out, compiler.Text{Value: *vd.Text})
	}
	if vd.Number != nil {
		out = append(out, compiler.Number{Value: float32(*vd.Number)})
	}
	if vd.Location != nil {
		if len(vd.Location) != 3 && len(vd.Location) != 5 {
			return nil, fmt.Errorf("loc needs 3 or 5 components, got %d", len(vd.Location))
		}
		loc := compiler.Location{
			X: float32(vd.Location[0]),
			Y: float32(vd.Location[1]),
			Z: float32(vd.Location[2]),
		}
		if len(vd.Location) == 5 {
			loc.Pitch = float32(vd.Location[3])
			loc.Yaw = float32(vd.Location[4])
		}
		out = append(out, loc)
	}
	if vd.Vector != nil {
		if len(vd.Vector) != 3 {
			return nil, fmt.Errorf("vec needs 3 components, got %d", len(vd.Vector))
		}
		out = append(out, compiler.Vector{X: vd.Vector[0], Y: vd.Vector[1], Z: vd.Vector[2]})
	}
	if vd.Sound != nil {
		out = append(out, compiler.Sound{
			Name:   vd.Sound.Name,
			Pitch:  float32(vd.Sound.Pitch),
			Volume: float32(vd.Sound.Volume),
		})
	}
	if vd.Potion != nil {
		effect, ok := compiler.ParsePotionEffect(vd.Potion.Effect)
		if !ok {
			return nil, fmt.Errorf("unknown potion effect %q", vd.Potion.Effect)
		}
		out = append(out, compiler.Potion{Effect: effect, Ticks: vd.Potion.Ticks, Amplifier: vd.Potion.Amplifier})
	}
	if vd.Variable != nil {
		v, err := vd.Variable.Variable()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if vd.GameValue != nil {
		target, ok := compiler.ParseSelector(vd.GameValue.Target)
		if !ok {
			return nil, fmt.Errorf("unknown target %q", vd.GameValue.Target)
		}
		out = append(out, compiler.GameValue{Name: vd.GameValue.Name, Target: target})
	}

	switch len(out) {
	case 0:
		return nil, fmt.Errorf("empty value")
	case 1:
		return out[0], nil
	}
	return nil, fmt.Errorf("value sets %d kinds, want exactly one", len(out))
}

// Variable converts the description into a compiler.Variable.
func (vd *VariableDef) Variable() (compiler.Variable, error) {
	scope, ok := compiler.ParseVariableScope(vd.Scope)
	if !ok {
		return compiler.Variable{}, fmt.Errorf("unknown variable scope %q", vd.Scope)
	}
	return compiler.Variable{Name: vd.Name, Scope: scope}, nil
}

// Tag converts the description into a compiler.Tag.
func (td *TagDef) Tag() (compiler.Tag, error) {
	tag := compiler.Tag{Name: td.Name, Option: td.Option}
	if td.Variable != nil {
		v, err := td.Variable.Variable()
		if err != nil {
			return compiler.Tag{}, err
		}
		tag.Variable = &v
	}
	return tag, nil
}
