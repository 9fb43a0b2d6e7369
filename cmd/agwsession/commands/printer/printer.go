package printer

import (
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/muesli/termenv"
	"github.com/shopspring/decimal"
)

// ethDecimals is the number of decimals between wei and ETH.
const ethDecimals = 18

type InteractivePrinter struct {
	writer       io.Writer
	profile      termenv.Profile
	checkMark    string
	questionMark string
	crossMark    string
	bangMark     string
	arrow        string
}

func NewInteractivePrinter(w io.Writer) *InteractivePrinter {
	profile := termenv.EnvColorProfile()
	return &InteractivePrinter{
		writer:       w,
		profile:      profile,
		checkMark:    termenv.String("✓ ").Foreground(profile.Color("2")).String(),
		questionMark: termenv.String("? ").Foreground(profile.Color("5")).String(),
		crossMark:    termenv.String("✗ ").Foreground(profile.Color("1")).String(),
		bangMark:     termenv.String("! ").Foreground(profile.Color("3")).String(),
		arrow:        termenv.String("➜ ").Foreground(profile.Color("4")).String(),
	}
}

func (p *InteractivePrinter) String() *FormattedString {
	return &FormattedString{
		printer: p,
	}
}

func (p *InteractivePrinter) Print(s *FormattedString) {
	_, _ = fmt.Fprint(p.writer, s.builder.String())
}

type FormattedString struct {
	printer *InteractivePrinter
	builder strings.Builder
}

func (s *FormattedString) Text(str string) *FormattedString {
	s.builder.WriteString(str)
	return s
}

func (s *FormattedString) Bold(str string) *FormattedString {
	s.builder.WriteString(termenv.String(str).Bold().String())
	return s
}

func (s *FormattedString) Code(str string) *FormattedString {
	s.builder.WriteString("    " + termenv.String(str).Bold().String())
	return s
}

func (s *FormattedString) SuccessText(str string) *FormattedString {
	return s.colored(str, "2")
}

func (s *FormattedString) DangerText(str string) *FormattedString {
	return s.colored(str, "1")
}

func (s *FormattedString) WarningText(str string) *FormattedString {
	return s.colored(str, "3")
}

func (s *FormattedString) InfoText(str string) *FormattedString {
	return s.colored(str, "4")
}

func (s *FormattedString) CheckMark() *FormattedString {
	s.builder.WriteString(s.printer.checkMark)
	return s
}

func (s *FormattedString) CrossMark() *FormattedString {
	s.builder.WriteString(s.printer.crossMark)
	return s
}

func (s *FormattedString) QuestionMark() *FormattedString {
	s.builder.WriteString(s.printer.questionMark)
	return s
}

func (s *FormattedString) BangMark() *FormattedString {
	s.builder.WriteString(s.printer.bangMark)
	return s
}

func (s *FormattedString) BlueArrow() *FormattedString {
	s.builder.WriteString(s.printer.arrow)
	return s
}

func (s *FormattedString) NextLine() *FormattedString {
	s.builder.WriteString("\n")
	return s
}

func (s *FormattedString) NextSection() *FormattedString {
	s.builder.WriteString("\n\n")
	return s
}

func (s *FormattedString) colored(str, color string) *FormattedString {
	s.builder.WriteString(termenv.String(str).Foreground(s.printer.profile.Color(color)).String())
	return s
}

// WeiToETH formats an amount of wei in ETH, without trailing zeros.
func WeiToETH(wei *big.Int) string {
	if wei == nil {
		return "0 ETH"
	}
	return decimal.NewFromBigInt(wei, -ethDecimals).String() + " ETH"
}
