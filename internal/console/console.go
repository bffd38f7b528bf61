// Package console implements the interactive menu shell: role choice and
// login, then an administrator or client panel driving the same services as
// the HTTP API.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/tbourn/go-shelter-backend/internal/domain"
	"github.com/tbourn/go-shelter-backend/internal/services"
)

// Animals is the subset of the animal registry used by the shell.
type Animals interface {
	AddAnimal(ctx context.Context, in services.AnimalInput) (*domain.Animal, error)
	ListAll(ctx context.Context) ([]domain.Animal, error)
	ListAvailable(ctx context.Context) ([]domain.Animal, error)
	SetStatus(ctx context.Context, id uint, status domain.AnimalStatus, reason string) error
}

// Adoption is the subset of the adoption workflow used by the shell.
type Adoption interface {
	CreateRequest(ctx context.Context, sess services.Session, animalID uint) (*domain.AdoptionRequest, error)
	ApproveRequest(ctx context.Context, id uint) error
	RejectRequest(ctx context.Context, id uint) error
	CancelRequest(ctx context.Context, sess services.Session, id uint) error
	ListAll(ctx context.Context) ([]domain.RequestView, error)
	ListByClient(ctx context.Context, sess services.Session) ([]domain.RequestView, error)
}

// Users authenticates shell logins.
type Users interface {
	Authenticate(ctx context.Context, username, password, role string) (*domain.User, error)
	Session(u *domain.User) services.Session
}

// Options configures the shell's terminal.
type Options struct {
	In  io.Reader // defaults to os.Stdin
	Out io.Writer // defaults to os.Stdout
}

// Shell is one interactive session over a terminal.
type Shell struct {
	animals  Animals
	adoption Adoption
	users    Users

	in  *bufio.Reader
	out io.Writer
	st  styles

	// readSecret reads a password without echo when the input is a terminal.
	readSecret func() (string, error)
}

// New builds a shell over the given services.
func New(animals Animals, adoption Adoption, users Users, opts Options) *Shell {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	s := &Shell{
		animals:  animals,
		adoption: adoption,
		users:    users,
		in:       bufio.NewReader(opts.In),
		out:      opts.Out,
		st:       newStyles(opts.Out),
	}
	s.readSecret = s.readLine
	if f, ok := opts.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		s.readSecret = func() (string, error) {
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(s.out)
			return string(b), err
		}
	}
	return s
}

// Run drives the main menu until the user exits or input ends. Service
// errors are reported on screen and never end the session.
func (s *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.println(s.st.banner("ANIMAL SHELTER"))
		s.menu("1. Administrator", "2. Client", "0. Exit")

		choice, err := s.prompt("Choose a role (0-2): ")
		if err != nil {
			return eofIsExit(err)
		}
		if choice == "0" {
			s.println("Goodbye!")
			return nil
		}
		role, err := roleFromChoice(choice)
		if err != nil {
			s.println(s.st.fail("Invalid choice!"))
			continue
		}

		sess, err := s.login(ctx, role)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			s.report(err)
			continue
		}
		s.println(s.st.ok(fmt.Sprintf("Welcome, %s!", sess.Name)))

		if role == domain.RoleAdmin {
			err = s.adminPanel(ctx)
		} else {
			err = s.clientPanel(ctx, sess)
		}
		if err != nil {
			return eofIsExit(err)
		}
	}
}

// roleFromChoice accepts the menu number or the role name itself.
func roleFromChoice(choice string) (domain.Role, error) {
	switch choice {
	case "1":
		return domain.RoleAdmin, nil
	case "2":
		return domain.RoleClient, nil
	}
	return services.ParseRole(strings.ToLower(choice))
}

func (s *Shell) login(ctx context.Context, role domain.Role) (services.Session, error) {
	username, err := s.prompt("Username: ")
	if err != nil {
		return services.Session{}, err
	}
	fmt.Fprint(s.out, "Password: ")
	password, err := s.readSecret()
	if err != nil {
		return services.Session{}, err
	}
	u, err := s.users.Authenticate(ctx, username, strings.TrimSpace(password), string(role))
	if err != nil {
		return services.Session{}, err
	}
	return s.users.Session(u), nil
}

// panel loops over a sub-menu; "0" returns to the caller.
func (s *Shell) panel(title string, items []string, actions map[string]func() error) error {
	for {
		s.println(s.st.heading(title))
		s.menu(append(items, "0. Back")...)
		ch, err := s.prompt("Action: ")
		if err != nil {
			return err
		}
		if ch == "0" {
			return nil
		}
		act, ok := actions[ch]
		if !ok {
			s.println(s.st.fail("Invalid choice!"))
			continue
		}
		if err := act(); err != nil {
			return err
		}
	}
}

func (s *Shell) prompt(label string) (string, error) {
	fmt.Fprint(s.out, label)
	return s.readLine()
}

func (s *Shell) readLine() (string, error) {
	line, err := s.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (s *Shell) menu(lines ...string) {
	for _, l := range lines {
		s.println(l)
	}
}

func (s *Shell) println(a ...any) { fmt.Fprintln(s.out, a...) }

// report prints a user-facing message for a service error.
func (s *Shell) report(err error) {
	s.println(s.st.fail(describe(err)))
}

func describe(err error) string {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		return fmt.Sprintf("Invalid %s: %s.", strings.ReplaceAll(ve.Field, "_", " "), ve.Reason)
	case errors.Is(err, services.ErrAuthentication):
		return "Wrong username, password or role!"
	case errors.Is(err, services.ErrAnimalUnavailable):
		return "Could not file the request (the animal may be unavailable)."
	case errors.Is(err, services.ErrRequestNotCancellable):
		return "Could not cancel (already processed or not yours)."
	case errors.Is(err, services.ErrRequestNotPending):
		return "The request has already been decided."
	case errors.Is(err, services.ErrAnimalNotFound):
		return "Animal not found."
	case errors.Is(err, services.ErrRequestNotFound):
		return "Request not found."
	case errors.Is(err, services.ErrForbidden):
		return "Not allowed for this role."
	}
	return "Error: " + err.Error()
}

func eofIsExit(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
