package compiler

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Block-list JSON serialization.
//
// Output layout:
//   {"blocks":[fragment,...]}
//   block:   {"id":"block","block":B,"args":{"items":[...]},...}
//   bracket: {"id":"bracket","direct":"open"|"close","type":"norm"|"repeat"}
//   item:    {"item":{"id":KIND,"data":{...}},"slot":N}
//
// Key order is fixed. Text values are written verbatim.
// ---------------------------------------------------------------------------

// SerializeLine produces the block-list JSON for a code line. Statements
// that open a scope emit their block followed by an open bracket.
func SerializeLine(line *CodeLine) ([]byte, error) {
	s := &serializer{buf: make([]byte, 0, 256)}
	s.writeString(`{"blocks":[`)
	for i, stmt := range line.Statements {
		if i > 0 {
			s.writeByte(',')
		}
		if err := s.serializeStatement(stmt); err != nil {
			return nil, fmt.Errorf("statement %d (%s): %w", i, stmt.DisplayName(), err)
		}
	}
	s.writeString(`]}`)
	return s.buf, nil
}

// SerializeStatement produces the fragment(s) for a single statement,
// comma separated, without the surrounding block list.
func SerializeStatement(stmt Statement) ([]byte, error) {
	s := &serializer{}
	if err := s.serializeStatement(stmt); err != nil {
		return nil, err
	}
	return s.buf, nil
}

// SerializeValue produces the slot item for v. ctx is the statement the
// value belongs to; it is only consulted for tags and may be nil otherwise.
func SerializeValue(v Value, slot int, ctx Statement) ([]byte, error) {
	s := &serializer{}
	if err := s.serializeItem(v, slot, ctx); err != nil {
		return nil, err
	}
	return s.buf, nil
}

type serializer struct {
	buf []byte
}

func (s *serializer) writeByte(b byte) {
	s.buf = append(s.buf, b)
}

func (s *serializer) writeString(v string) {
	s.buf = append(s.buf, v...)
}

// writeQuoted writes v as a JSON string literal.
func (s *serializer) writeQuoted(v string) {
	const hex = "0123456789abcdef"
	s.writeByte('"')
	for i := 0; i < len(v); {
		c := v[i]
		if c < utf8.RuneSelf {
			switch {
			case c == '"' || c == '\\':
				s.buf = append(s.buf, '\\', c)
			case c == '\n':
				s.buf = append(s.buf, '\\', 'n')
			case c == '\r':
				s.buf = append(s.buf, '\\', 'r')
			case c == '\t':
				s.buf = append(s.buf, '\\', 't')
			case c < 0x20:
				s.buf = append(s.buf, '\\', 'u', '0', '0', hex[c>>4], hex[c&0xF])
			default:
				s.buf = append(s.buf, c)
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(v[i:])
		if r == utf8.RuneError && size == 1 {
			s.writeString("\ufffd")
		} else {
			s.writeString(v[i : i+size])
		}
		i += size
	}
	s.writeByte('"')
}

// writeKey writes `"key":` preceded by a comma.
func (s *serializer) writeKey(key string) {
	s.writeByte(',')
	s.writeQuoted(key)
	s.writeByte(':')
}

func (s *serializer) writeFloat32(v float32) {
	s.buf = strconv.AppendFloat(s.buf, float64(v), 'f', -1, 32)
}

func (s *serializer) writeFloat64(v float64) {
	s.buf = strconv.AppendFloat(s.buf, v, 'f', -1, 64)
}

func (s *serializer) writeInverted(not bool) {
	s.writeKey("inverted")
	if not {
		s.writeQuoted("NOT")
	} else {
		s.writeQuoted("")
	}
}

func (s *serializer) writeBracket(direct string, typ BracketType) {
	s.writeString(`{"id":"bracket","direct":"`)
	s.writeString(direct)
	s.writeString(`","type":"`)
	s.writeString(string(typ))
	s.writeString(`"}`)
}

// openBlock writes the common prefix of a block fragment up to and
// including the parameter items, leaving the object open.
func (s *serializer) openBlock(stmt Statement) error {
	params := ParamsOf(stmt)
	s.writeString(`{"id":"block","block":`)
	s.writeQuoted(stmt.BlockName())
	s.writeString(`,"args":{"items":[`)
	if params != nil {
		first := true
		for slot, v := range params {
			if v == nil {
				continue
			}
			if !first {
				s.writeByte(',')
			}
			first = false
			if err := s.serializeItem(v, slot, stmt); err != nil {
				return err
			}
		}
	}
	s.writeString(`]}`)
	return nil
}

func (s *serializer) serializeStatement(stmt Statement) error {
	switch n := stmt.(type) {
	case *PlayerEvent, *EntityEvent:
		if err := s.openBlock(stmt); err != nil {
			return err
		}
		s.writeKey("action")
		s.writeQuoted(tagAction(stmt))
		s.writeByte('}')

	case *Function:
		return s.namedBlock(stmt, n.Name)
	case *Process:
		return s.namedBlock(stmt, n.Name)
	case *CallFunction:
		return s.namedBlock(stmt, n.Name)
	case *CallProcess:
		return s.namedBlock(stmt, n.Name)

	case *PlayerAction:
		return s.targetedBlock(stmt, n.Action, n.Target)
	case *EntityAction:
		return s.targetedBlock(stmt, n.Action, n.Target)

	case *SetVariable:
		return s.actionBlock(stmt, n.Action)
	case *GameAction:
		return s.actionBlock(stmt, n.Action)
	case *Control:
		return s.actionBlock(stmt, n.Action)

	case *SelectObject:
		if err := s.openBlock(stmt); err != nil {
			return err
		}
		s.writeKey("action")
		s.writeQuoted(n.Action)
		s.writeKey("subAction")
		s.writeQuoted(n.SubAction)
		s.writeInverted(n.Not)
		s.writeByte('}')

	case *IfVariable:
		return s.conditional(stmt, n.Action, n.Not, nil)
	case *IfGame:
		return s.conditional(stmt, n.Action, n.Not, nil)
	case *IfPlayer:
		return s.conditional(stmt, n.Action, n.Not, &n.Target)
	case *IfEntity:
		return s.conditional(stmt, n.Action, n.Not, &n.Target)

	case *Else:
		s.writeString(`{"id":"block","block":"else"},`)
		s.writeBracket("open", BracketNorm)
	case *Close:
		s.writeBracket("close", BracketNorm)
	case *CloseRepeat:
		s.writeBracket("close", BracketRepeat)

	case *Repeat:
		if err := s.openBlock(stmt); err != nil {
			return err
		}
		s.writeKey("action")
		s.writeQuoted(n.Action)
		s.writeKey("subAction")
		s.writeQuoted(n.SubAction)
		s.writeInverted(n.Not)
		s.writeString(`},`)
		s.writeBracket("open", BracketRepeat)

	default:
		return fmt.Errorf("unknown statement type %T", stmt)
	}
	return nil
}

func (s *serializer) namedBlock(stmt Statement, name string) error {
	if err := s.openBlock(stmt); err != nil {
		return err
	}
	s.writeKey("data")
	s.writeQuoted(name)
	s.writeByte('}')
	return nil
}

func (s *serializer) actionBlock(stmt Statement, action string) error {
	if err := s.openBlock(stmt); err != nil {
		return err
	}
	s.writeKey("action")
	s.writeQuoted(action)
	s.writeByte('}')
	return nil
}

func (s *serializer) targetedBlock(stmt Statement, action string, target Selector) error {
	if err := s.openBlock(stmt); err != nil {
		return err
	}
	s.writeKey("action")
	s.writeQuoted(action)
	s.writeKey("target")
	s.writeQuoted(target.String())
	s.writeByte('}')
	return nil
}

func (s *serializer) conditional(stmt Statement, action string, not bool, target *Selector) error {
	if err := s.openBlock(stmt); err != nil {
		return err
	}
	s.writeKey("action")
	s.writeQuoted(action)
	s.writeInverted(not)
	if target != nil {
		s.writeKey("target")
		s.writeQuoted(target.String())
	}
	s.writeString(`},`)
	s.writeBracket("open", BracketNorm)
	return nil
}

// serializeItem writes one slot item. Tags resolve their action and block
// from ctx.
func (s *serializer) serializeItem(v Value, slot int, ctx Statement) error {
	start := len(s.buf)
	s.writeString(`{"item":{"id":"`)
	s.writeString(v.Kind())
	s.writeString(`","data":`)

	switch n := v.(type) {
	case Text:
		s.writeString(`{"name":"`)
		s.writeString(n.Value)
		s.writeString(`"}`)

	case Number:
		s.writeString(`{"name":"`)
		s.writeFloat32(n.Value)
		s.writeString(`"}`)

	case Location:
		s.writeString(`{"isBlock":false,"loc":{"x":`)
		s.writeFloat32(n.X)
		s.writeString(`,"y":`)
		s.writeFloat32(n.Y)
		s.writeString(`,"z":`)
		s.writeFloat32(n.Z)
		s.writeString(`,"pitch":`)
		s.writeFloat32(n.Pitch)
		s.writeString(`,"yaw":`)
		s.writeFloat32(n.Yaw)
		s.writeString(`}}`)

	case Vector:
		s.writeString(`{"x":`)
		s.writeFloat64(n.X)
		s.writeString(`,"y":`)
		s.writeFloat64(n.Y)
		s.writeString(`,"z":`)
		s.writeFloat64(n.Z)
		s.writeByte('}')

	case Sound:
		s.writeString(`{"sound":`)
		s.writeQuoted(n.Name)
		s.writeString(`,"pitch":`)
		s.writeFloat32(n.Pitch)
		s.writeString(`,"vol":`)
		s.writeFloat32(n.Volume)
		s.writeByte('}')

	case Potion:
		s.writeString(`{"pot":`)
		s.writeQuoted(n.Effect.String())
		s.writeString(`,"dur":`)
		s.buf = strconv.AppendUint(s.buf, n.Ticks, 10)
		s.writeString(`,"amp":`)
		s.buf = strconv.AppendInt(s.buf, int64(n.Amplifier), 10)
		s.writeByte('}')

	case Variable:
		s.writeVariableData(n)

	case GameValue:
		s.writeString(`{"type":`)
		s.writeQuoted(n.Name)
		s.writeString(`,"target":`)
		s.writeQuoted(n.Target.String())
		s.writeByte('}')

	case Tag:
		if ctx == nil {
			s.buf = s.buf[:start]
			return fmt.Errorf("tag %q serialized without an enclosing statement", n.Name)
		}
		s.writeString(`{"option":`)
		s.writeQuoted(n.Option)
		s.writeString(`,"tag":`)
		s.writeQuoted(n.Name)
		s.writeString(`,"action":`)
		s.writeQuoted(tagAction(ctx))
		s.writeString(`,"block":`)
		s.writeQuoted(ctx.BlockName())
		if n.Variable != nil {
			s.writeString(`,"variable":{"id":"var","data":`)
			s.writeVariableData(*n.Variable)
			s.writeByte('}')
		}
		s.writeByte('}')

	default:
		s.buf = s.buf[:start]
		return fmt.Errorf("%w: %T in slot %d", ErrUnsupportedValue, v, slot)
	}

	s.writeString(`},"slot":`)
	s.buf = strconv.AppendInt(s.buf, int64(slot), 10)
	s.writeByte('}')
	return nil
}

func (s *serializer) writeVariableData(v Variable) {
	s.writeString(`{"name":`)
	s.writeQuoted(v.Name)
	s.writeString(`,"scope":`)
	s.writeQuoted(v.Scope.String())
	s.writeByte('}')
}
