package types

import (
	"fmt"
	"strconv"
	"strings"

	"tyco/internal/source"
)

// Format renders a type for diagnostics. Output mirrors the reference
// compiler's surface syntax closely enough that messages read naturally.
func (in *Interner) Format(id TypeID) string {
	return in.format(id, 0)
}

const maxFormatDepth = 6

func (in *Interner) format(id TypeID, depth int) string {
	if depth > maxFormatDepth {
		return "..."
	}
	t, ok := in.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	switch t.Kind {
	case KindIntrinsic:
		return Intrinsic(t.Payload).String()
	case KindLiteralString:
		s, _ := in.StringValue(id)
		return strconv.Quote(s)
	case KindLiteralNumber:
		v, _ := in.NumberValue(id)
		return strconv.FormatFloat(v, 'g', -1, 64)
	case KindLiteralBigInt:
		s, _ := in.Strings.Lookup(source.Atom(t.Payload))
		return s + "n"
	case KindLiteralBool:
		if t.Payload != 0 {
			return "true"
		}
		return "false"
	case KindUniqueSymbol:
		return "unique symbol"
	case KindObject:
		o, _ := in.Object(id)
		if len(o.Props) == 0 && len(o.Constructs) == 0 && len(o.Calls) == 1 {
			return in.formatSignature(o.Calls[0], depth, " => ")
		}
		var b strings.Builder
		b.WriteString("{ ")
		first := true
		for _, sig := range o.Calls {
			if !first {
				b.WriteString("; ")
			}
			first = false
			b.WriteString(in.formatSignature(sig, depth, ": "))
		}
		for _, p := range o.Props {
			if !first {
				b.WriteString("; ")
			}
			first = false
			name, _ := in.Strings.Lookup(p.Name)
			b.WriteString(name)
			if p.Optional {
				b.WriteString("?")
			}
			b.WriteString(": ")
			b.WriteString(in.format(p.Type, depth+1))
		}
		if o.StringIndex.IsValid() {
			if !first {
				b.WriteString("; ")
			}
			first = false
			b.WriteString("[x: string]: ")
			b.WriteString(in.format(o.StringIndex, depth+1))
		}
		if first {
			return "{}"
		}
		b.WriteString(" }")
		return b.String()
	case KindArray:
		return in.format(t.Elem, depth+1) + "[]"
	case KindTuple:
		tup, _ := in.Tuple(id)
		parts := make([]string, len(tup.Elems))
		for i, e := range tup.Elems {
			s := in.format(e.Type, depth+1)
			if e.Rest {
				s = "..." + s
			} else if e.Optional {
				s += "?"
			}
			parts[i] = s
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindUnion:
		return in.formatList(id, depth, " | ")
	case KindIntersection:
		return in.formatList(id, depth, " & ")
	case KindApplication:
		a, _ := in.App(id)
		args := make([]string, len(a.Args))
		for i, m := range a.Args {
			args[i] = in.format(m, depth+1)
		}
		return in.format(a.Base, depth+1) + "<" + strings.Join(args, ", ") + ">"
	case KindMapped:
		m, _ := in.Mapped(id)
		p, _ := in.Param(m.TypeParam)
		name, _ := in.Strings.Lookup(p.Name)
		return fmt.Sprintf("{ [%s in %s]: %s }", name, in.format(m.Keys, depth+1), in.format(m.Value, depth+1))
	case KindConditional:
		c, _ := in.Cond(id)
		return fmt.Sprintf("%s extends %s ? %s : %s",
			in.format(c.Check, depth+1), in.format(c.Extends, depth+1),
			in.format(c.WhenTrue, depth+1), in.format(c.WhenFalse, depth+1))
	case KindInfer:
		p, _ := in.Param(id)
		name, _ := in.Strings.Lookup(p.Name)
		return "infer " + name
	case KindTemplateLiteral:
		tpl, _ := in.Template(id)
		var b strings.Builder
		b.WriteString("`")
		for i, text := range tpl.Texts {
			s, _ := in.Strings.Lookup(text)
			b.WriteString(s)
			if i < len(tpl.Holes) {
				b.WriteString("${")
				b.WriteString(in.format(tpl.Holes[i], depth+1))
				b.WriteString("}")
			}
		}
		b.WriteString("`")
		return b.String()
	case KindKeyOf:
		return "keyof " + in.format(t.Elem, depth+1)
	case KindReadonly:
		return "readonly " + in.format(t.Elem, depth+1)
	case KindIndexedAccess:
		return in.format(t.Elem, depth+1) + "[" + in.format(t.Key, depth+1) + "]"
	case KindTypeParameter:
		p, _ := in.Param(id)
		name, _ := in.Strings.Lookup(p.Name)
		if name == "" {
			return "T"
		}
		return name
	case KindThisType:
		return "this"
	case KindTypeQuery:
		return "typeof <symbol>"
	case KindLazy:
		return fmt.Sprintf("<def %d>", t.Def)
	case KindEnum:
		return fmt.Sprintf("<enum %d>", t.Def)
	}
	return "<unknown>"
}

func (in *Interner) formatList(id TypeID, depth int, sep string) string {
	members := in.ListMembers(id)
	parts := make([]string, len(members))
	for i, m := range members {
		s := in.format(m, depth+1)
		if sep == " & " && in.KindOf(m) == KindUnion {
			s = "(" + s + ")"
		}
		parts[i] = s
	}
	return strings.Join(parts, sep)
}

func (in *Interner) formatSignature(sig SignatureID, depth int, arrow string) string {
	s := in.Signature(sig)
	parts := make([]string, 0, len(s.Params))
	for _, p := range s.Params {
		name, _ := in.Strings.Lookup(p.Name)
		if name == "" {
			name = "arg"
		}
		part := name
		if p.Optional {
			part += "?"
		}
		if p.Rest {
			part = "..." + part
		}
		parts = append(parts, part+": "+in.format(p.Type, depth+1))
	}
	return "(" + strings.Join(parts, ", ") + ")" + arrow + in.format(s.Return, depth+1)
}
