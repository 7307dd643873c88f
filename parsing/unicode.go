package parsing

import "unicode"

func category(name string, table *unicode.RangeTable) *ClassParser {
	return Class(name, func(r rune) bool { return unicode.Is(table, r) })
}

func Letter() *ClassParser { return Class("letter", unicode.IsLetter) }
func UpperLetter() *ClassParser { return category("upper_letter", unicode.Lu) }
func LowerLetter() *ClassParser { return category("lower_letter", unicode.Ll) }
func TitleLetter() *ClassParser { return category("title_letter", unicode.Lt) }
func ModifierLetter() *ClassParser { return category("modifier_letter", unicode.Lm) }
func OtherLetter() *ClassParser { return category("other_letter", unicode.Lo) }
func Mark() *ClassParser { return Class("mark", unicode.IsMark) }
func NonspacingMark() *ClassParser { return category("nonspacing_mark", unicode.Mn) }
func SpacingMark() *ClassParser { return category("spacing_mark", unicode.Mc) }
func EnclosingMark() *ClassParser { return category("enclosing_mark", unicode.Me) }
func Number() *ClassParser { return Class("number", unicode.IsNumber) }
func DecimalNumber() *ClassParser { return category("decimal_number", unicode.Nd) }
func LetterNumber() *ClassParser { return category("letter_number", unicode.Nl) }
func OtherNumber() *ClassParser { return category("other_number", unicode.No) }
func Punctuation() *ClassParser { return Class("punctuation", unicode.IsPunct) }
func Symbol() *ClassParser { return Class("symbol", unicode.IsSymbol) }
func Separator() *ClassParser { return category("separator", unicode.Z) }
func Control() *ClassParser { return Class("control", unicode.IsControl) }
func Format() *ClassParser { return category("format", unicode.Cf) }
func PrivateUse() *ClassParser { return category("private_use", unicode.Co) }
func Graphic() *ClassParser { return Class("graphic", unicode.IsGraphic) }

func CasedLetter() *ClassParser {
	return Class("cased_letter", func(r rune) bool {
		return unicode.In(r, unicode.Lu, unicode.Ll, unicode.Lt)
	})
}

// IsIDStart reports whether r may begin an identifier.
func IsIDStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.Is(unicode.Nl, r)
}

// IsIDCont reports whether r may continue an identifier.
func IsIDCont(r rune) bool {
	return IsIDStart(r) || unicode.In(r, unicode.Mn, unicode.Mc, unicode.Nd, unicode.Pc)
}

func IDStart() *ClassParser { return Class("idstart", IsIDStart) }
func IDCont() *ClassParser { return Class("idcont", IsIDCont) }
