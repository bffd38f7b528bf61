package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tbourn/go-shelter-backend/internal/domain"
)

type styles struct {
	bannerStyle  lipgloss.Style
	headingStyle lipgloss.Style
	okStyle      lipgloss.Style
	failStyle    lipgloss.Style
	dimStyle     lipgloss.Style
}

// newStyles binds the palette to out so colour is dropped for pipes and
// files.
func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		bannerStyle: r.NewStyle().
			Bold(true).
			Border(lipgloss.DoubleBorder(), true, false).
			Foreground(lipgloss.Color("12")).
			Padding(0, 3),
		headingStyle: r.NewStyle().
			Bold(true).
			Border(lipgloss.NormalBorder(), false, false, true, false),
		okStyle:   r.NewStyle().Foreground(lipgloss.Color("10")),
		failStyle: r.NewStyle().Foreground(lipgloss.Color("9")),
		dimStyle:  r.NewStyle().Faint(true),
	}
}

func (s styles) banner(t string) string  { return "\n" + s.bannerStyle.Render(t) }
func (s styles) heading(t string) string { return "\n" + s.headingStyle.Render(t) }
func (s styles) ok(t string) string      { return s.okStyle.Render(t) }
func (s styles) fail(t string) string    { return s.failStyle.Render(t) }
func (s styles) dim(t string) string     { return s.dimStyle.Render(t) }

var requestLabels = map[domain.RequestStatus]string{
	domain.RequestPending:   "Pending",
	domain.RequestApproved:  "Approved",
	domain.RequestRejected:  "Rejected",
	domain.RequestCancelled: "Cancelled",
}

func requestLabel(st domain.RequestStatus) string {
	if l, ok := requestLabels[st]; ok {
		return l
	}
	return string(st)
}

func ageText(age *int) string {
	if age == nil {
		return "?"
	}
	return fmt.Sprintf("%d yrs", *age)
}

func statusText(a domain.Animal) string {
	if a.StatusReason == "" {
		return string(a.Status)
	}
	return fmt.Sprintf("%s (%s)", a.Status, a.StatusReason)
}

// animalLine is the administrator view of an animal.
func animalLine(a domain.Animal) string {
	return fmt.Sprintf("ID: %d | %s (%s) | %s | %s | Status: %s",
		a.ID, a.Name, a.Species, orDash(a.Breed), ageText(a.Age), statusText(a))
}

// availableLine is the client view of an adoptable animal.
func availableLine(a domain.Animal) string {
	return fmt.Sprintf("ID: %d | %s | %s | Breed: %s | Age: %s | Health: %s",
		a.ID, a.Name, a.Species, orDash(a.Breed), ageText(a.Age), orDash(a.HealthStatus))
}

func requestLine(r domain.RequestView) string {
	return fmt.Sprintf("#%d | Animal: %s (ID %d) | Client: %s (%s) | %s | Date: %s",
		r.ID, r.AnimalName, r.AnimalID, r.ClientName, r.ClientPhone,
		requestLabel(r.Status), r.RequestDate.Format("2006-01-02 15:04"))
}

func myRequestLine(r domain.RequestView) string {
	return fmt.Sprintf("#%d | Animal: %s | Status: %s | Date: %s",
		r.ID, r.AnimalName, requestLabel(r.Status), r.RequestDate.Format("2006-01-02 15:04"))
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
