package solver

import (
	"strconv"
	"strings"

	"tyco/internal/source"
	"tyco/internal/types"
)

func isNumericName(in *source.Interner, name source.Atom) bool {
	s, _ := in.Lookup(name)
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// checkTemplateTarget matches sources against a template literal target. A
// string literal matches when its characters cover the literal parts and
// each hole's corresponding substring fits the hole's type. Membership for
// holes with infinite inhabitants is decided syntactically, mirroring the
// reference behavior rather than attempting full inclusion.
func (c *SubtypeChecker) checkTemplateTarget(src, target types.TypeID, st types.Type) Result {
	tpl, _ := c.In.Template(target)
	switch st.Kind {
	case types.KindLiteralString:
		value, _ := c.In.StringValue(src)
		return fromBool(c.matchTemplate(value, tpl))
	case types.KindTemplateLiteral:
		stpl, _ := c.In.Template(src)
		if len(stpl.Texts) != len(tpl.Texts) || len(stpl.Holes) != len(tpl.Holes) {
			return False
		}
		for i := range stpl.Texts {
			if stpl.Texts[i] != tpl.Texts[i] {
				return False
			}
		}
		res := True
		for i := range stpl.Holes {
			res = both(res, c.Check(stpl.Holes[i], tpl.Holes[i]))
			if res.IsFalse() {
				return res
			}
		}
		return res
	case types.KindTypeParameter:
		return c.checkParamSource(src, target)
	}
	c.trace(Mismatch{Kind: MismatchLiteral, Source: src, Target: target})
	return False
}

// matchTemplate matches value against the texts/holes sequence with
// backtracking over hole extents.
func (c *SubtypeChecker) matchTemplate(value string, tpl *types.TemplateInfo) bool {
	head, _ := c.In.Strings.Lookup(tpl.Texts[0])
	if !strings.HasPrefix(value, head) {
		return false
	}
	return c.matchSpans(value[len(head):], tpl, 0)
}

func (c *SubtypeChecker) matchSpans(rest string, tpl *types.TemplateInfo, hole int) bool {
	if hole >= len(tpl.Holes) {
		return rest == ""
	}
	next, _ := c.In.Strings.Lookup(tpl.Texts[hole+1])
	last := hole == len(tpl.Holes)-1

	// Candidate extents for the hole: every position where the following
	// literal part resumes. The final hole must consume up to the trailing
	// literal exactly.
	if last {
		if !strings.HasSuffix(rest, next) {
			return false
		}
		slice := rest[:len(rest)-len(next)]
		return c.holeAccepts(slice, tpl.Holes[hole])
	}
	for at := 0; at+len(next) <= len(rest); at++ {
		if next != "" && !strings.HasPrefix(rest[at:], next) {
			continue
		}
		if !c.holeAccepts(rest[:at], tpl.Holes[hole]) {
			if next == "" {
				continue
			}
			continue
		}
		if c.matchSpans(rest[at+len(next):], tpl, hole+1) {
			return true
		}
		if next == "" {
			// An empty separator makes every split a candidate.
			continue
		}
	}
	return false
}

// holeAccepts decides whether a concrete substring inhabits the hole type.
func (c *SubtypeChecker) holeAccepts(slice string, hole types.TypeID) bool {
	b := c.In.Builtins()
	switch {
	case hole == b.String || hole == b.Any || hole == b.Unknown:
		return true
	case hole == b.Number:
		_, err := strconv.ParseFloat(slice, 64)
		return err == nil && slice != ""
	case hole == b.BigInt:
		_, err := strconv.ParseInt(strings.TrimSuffix(slice, "n"), 10, 64)
		return err == nil
	case hole == b.Boolean:
		return slice == "true" || slice == "false"
	}
	switch c.In.KindOf(hole) {
	case types.KindLiteralString:
		v, _ := c.In.StringValue(hole)
		return v == slice
	case types.KindLiteralNumber:
		v, _ := c.In.NumberValue(hole)
		parsed, err := strconv.ParseFloat(slice, 64)
		return err == nil && parsed == v
	case types.KindUnion:
		for _, m := range c.In.ListMembers(hole) {
			if c.holeAccepts(slice, m) {
				return true
			}
		}
	case types.KindTemplateLiteral:
		tpl, _ := c.In.Template(hole)
		return c.matchTemplate(slice, tpl)
	}
	return false
}
