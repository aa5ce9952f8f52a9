// Command marktrackctl is a terminal front-end for the MarkTrack API. It
// drives the onboarding lifecycle end to end: register, log in, redeem a role
// code, submit profile details, and read the notification feed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/marktrack/marktrack-api/internal/models"
	"github.com/marktrack/marktrack-api/pkg/client"
)

func main() {
	var (
		baseURL     string
		sessionPath string
	)

	flag.StringVar(&baseURL, "base", "http://localhost:8080/api/v1", "API base URL")
	flag.StringVar(&sessionPath, "session", defaultSessionPath(), "Path to the session file")
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	store := client.NewFileStore(sessionPath)
	c := client.New(baseURL, store)
	lc := client.NewLifecycle(c, nil)
	ctx := context.Background()

	var err error
	switch cmd := flag.Arg(0); cmd {
	case "register":
		err = register(ctx, lc, flag.Args()[1:])
	case "login":
		err = login(ctx, lc, flag.Args()[1:])
	case "enter-code":
		err = enterCode(ctx, lc, flag.Args()[1:])
	case "complete-student":
		err = completeStudent(ctx, lc, flag.Args()[1:])
	case "complete-teacher":
		err = completeTeacher(ctx, lc, flag.Args()[1:])
	case "notifications":
		err = notifications(ctx, c, lc)
	case "status":
		err = status(ctx, lc)
	case "logout":
		lc.Logout(ctx)
		fmt.Println("logged out")
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: marktrackctl [flags] <command> [args]

commands:
  register <email> <password>
  login <email> <password>
  enter-code <code>
  complete-student <student_no> <first> <last> <father> <gov_number>
  complete-teacher <first> <last> <father> <gov_number> <subject_id>
  notifications
  status
  logout`)
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".marktrack-session.json"
	}
	return filepath.Join(home, ".marktrack-session.json")
}

func register(ctx context.Context, lc *client.Lifecycle, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("expected <email> <password>")
	}
	if err := lc.Register(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Println("account created, log in to continue")
	return nil
}

func login(ctx context.Context, lc *client.Lifecycle, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("expected <email> <password>")
	}
	state, err := lc.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	printNextStep(state)
	return nil
}

func enterCode(ctx context.Context, lc *client.Lifecycle, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected <code>")
	}
	state, err := lc.AssignRole(ctx, args[0])
	if err != nil {
		return err
	}
	if state == client.StateAnonymous {
		fmt.Println("role granted, log in again to continue")
		return nil
	}
	printNextStep(state)
	return nil
}

func completeStudent(ctx context.Context, lc *client.Lifecycle, args []string) error {
	if len(args) != 5 {
		return fmt.Errorf("expected <student_no> <first> <last> <father> <gov_number>")
	}
	outcome, err := lc.CompleteStudentProfile(ctx, models.StudentProfileRequest{
		StudentNo:  args[0],
		FirstName:  args[1],
		LastName:   args[2],
		FatherName: args[3],
		GovNumber:  args[4],
	})
	if err != nil {
		return err
	}
	printCompletion(outcome)
	return nil
}

func completeTeacher(ctx context.Context, lc *client.Lifecycle, args []string) error {
	if len(args) != 5 {
		return fmt.Errorf("expected <first> <last> <father> <gov_number> <subject_id>")
	}
	outcome, err := lc.CompleteTeacherProfile(ctx, models.TeacherProfileRequest{
		FirstName:  args[0],
		LastName:   args[1],
		FatherName: args[2],
		GovNumber:  args[3],
		SubjectID:  args[4],
	})
	if err != nil {
		return err
	}
	printCompletion(outcome)
	return nil
}

func notifications(ctx context.Context, c *client.Client, lc *client.Lifecycle) error {
	if lc.State() != client.StateActive {
		return fmt.Errorf("log in first")
	}
	agg := client.NewNotifications(c)
	items, err := agg.Fetch(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("no notifications")
		return nil
	}
	fmt.Printf("%d unread\n", agg.UnreadCount())
	for _, n := range items {
		fmt.Printf("  [%s] %s\n", n.Date.Format("2006-01-02"), client.FormatNotification(n))
	}
	return nil
}

func status(ctx context.Context, lc *client.Lifecycle) error {
	state, err := lc.Verify(ctx)
	if err != nil {
		return err
	}
	if identity := lc.Identity(); identity != nil {
		fmt.Printf("%s (%s)\n", identity.Email, identity.Role)
	}
	printNextStep(state)
	return nil
}

func printNextStep(state client.State) {
	switch state {
	case client.StateIncomplete:
		fmt.Println("logged in, enter your onboarding code next")
	case client.StateAwaitingDetails:
		fmt.Println("logged in, submit your profile details next")
	case client.StateActive:
		fmt.Println("logged in")
	default:
		fmt.Println("logged out")
	}
}

func printCompletion(outcome client.ProfileOutcome) {
	if outcome.AlreadyExisted {
		fmt.Println("profile was already completed, log in again")
		return
	}
	fmt.Println("profile completed, log in again with full access")
}
