// Command medtrack is the terminal front-end: thin commands that collect
// input, hand it to the client core and print what comes back. Every
// failure is a one-line notice; nothing here is fatal except bad usage.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"medtrack/internal/model"
	"medtrack/internal/portal"
	"medtrack/internal/session"
)

const usage = `usage: medtrack <command> [flags]

commands:
  register      create an account and sign in
  login         sign in
  logout        sign out and forget the saved session
  whoami        show the signed-in user
  doctors       list bookable doctors
  book          book an appointment (patients)
  list          list your appointments, chronologically
  complete      mark an appointment completed (doctors)
  cancel        cancel an appointment (doctors)
  record-add    add a medical record entry
  record-list   show a patient's medical records
`

func main() {
	log.SetFlags(0)
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	base := env("MEDTRACK_API", "http://localhost:8080/api")
	var opts []session.Option
	if p := os.Getenv("MEDTRACK_STATE"); p != "" {
		opts = append(opts, session.WithStatePath(p))
	}
	sess, err := session.New(base, opts...)
	if err != nil {
		log.Fatal(err)
	}

	policy := portal.Policy{PatientRecords: os.Getenv("MEDTRACK_PATIENT_RECORDS") == "1"}
	backend := portal.NewRESTBackend(sess.Client(), sess)
	appts := portal.NewAppointments(backend, sess, policy)
	recs := portal.NewRecords(backend, sess, policy)

	// ctrl-c cancels whatever call is in flight
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := &cli{sess: sess, appts: appts, recs: recs}
	if err := app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		log.Fatalf("medtrack: %v", err)
	}
}

type cli struct {
	sess  *session.Session
	appts *portal.Appointments
	recs  *portal.Records
}

func (a *cli) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "register":
		return a.register(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "logout":
		a.sess.Logout()
		fmt.Println("signed out")
		return nil
	case "whoami":
		return a.whoami()
	case "doctors":
		return a.doctors(ctx)
	case "book":
		return a.book(ctx, args)
	case "list":
		return a.list(ctx)
	case "complete":
		return a.setStatus(ctx, args, model.StatusCompleted)
	case "cancel":
		return a.setStatus(ctx, args, model.StatusCancelled)
	case "record-add":
		return a.recordAdd(ctx, args)
	case "record-list":
		return a.recordList(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *cli) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password (min 8 chars)")
	name := fs.String("name", "", "display name")
	role := fs.String("role", "patient", "patient or doctor")
	fs.Parse(args)

	u, err := a.sess.Register(ctx, *email, *password, *name, model.Role(*role))
	if err != nil {
		return err
	}
	fmt.Printf("registered and signed in as %s (%s)\n", u.Name, u.Role)
	return nil
}

func (a *cli) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	fs.Parse(args)

	u, err := a.sess.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s (%s)\n", u.Name, u.Role)
	return nil
}

func (a *cli) whoami() error {
	u := a.sess.Current()
	if u == nil {
		fmt.Println("not signed in")
		return nil
	}
	fmt.Printf("%s <%s> (%s)\n", u.Name, u.Email, u.Role)
	return nil
}

func (a *cli) doctors(ctx context.Context) error {
	doctors, err := a.appts.Doctors(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL")
	for _, d := range doctors {
		fmt.Fprintf(w, "%s\t%s\t%s\n", d.ID, d.Name, d.Email)
	}
	return w.Flush()
}

func (a *cli) book(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("book", flag.ExitOnError)
	doctor := fs.String("doctor", "", "doctor id")
	date := fs.String("date", "", "date (YYYY-MM-DD)")
	at := fs.String("time", "", "time (HH:MM)")
	reason := fs.String("reason", "", "reason for the visit")
	fs.Parse(args)

	apt, err := a.appts.Book(ctx, *doctor, *date, *at, *reason)
	if err != nil {
		return err
	}
	fmt.Printf("booked %s %s with %s: %s\n", apt.Date, apt.Time, apt.DoctorID, apt.Status)
	return nil
}

func (a *cli) list(ctx context.Context) error {
	apts, err := a.appts.List(ctx)
	if err != nil {
		return err
	}
	portal.SortChronological(apts)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTIME\tSTATUS\tREASON")
	for _, apt := range apts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", apt.ID, apt.Date, apt.Time, apt.Status, apt.Reason)
	}
	return w.Flush()
}

func (a *cli) setStatus(ctx context.Context, args []string, target model.Status) error {
	if len(args) != 1 {
		verb := "complete"
		if target == model.StatusCancelled {
			verb = "cancel"
		}
		return fmt.Errorf("usage: medtrack %s <appointment-id>", verb)
	}
	apt, err := a.appts.SetStatus(ctx, args[0], target)
	if err != nil {
		return err
	}
	fmt.Printf("appointment %s is now %s\n", apt.ID, apt.Status)
	return nil
}

func (a *cli) recordAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("record-add", flag.ExitOnError)
	patient := fs.String("patient", "", "patient id")
	diagnosis := fs.String("diagnosis", "", "diagnosis")
	treatment := fs.String("treatment", "", "treatment")
	notes := fs.String("notes", "", "notes")
	var meds stringList
	fs.Var(&meds, "med", "medication (repeatable)")
	fs.Parse(args)

	rec, err := a.recs.Create(ctx, *patient, *diagnosis, *treatment, meds, *notes)
	if err != nil {
		return err
	}
	fmt.Printf("record %s filed for patient %s\n", rec.ID, rec.PatientID)
	return nil
}

func (a *cli) recordList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("record-list", flag.ExitOnError)
	patient := fs.String("patient", "", "patient id (defaults to yourself)")
	fs.Parse(args)

	patientID := *patient
	if patientID == "" {
		if u := a.sess.Current(); u != nil {
			patientID = u.ID
		}
	}

	records, err := a.recs.ListFor(ctx, patientID)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tDIAGNOSIS\tTREATMENT\tMEDICATIONS")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\n",
			r.CreatedAt.Format("2006-01-02"), r.Diagnosis, r.Treatment, r.Medications)
	}
	return w.Flush()
}

type stringList []string

func (s *stringList) String() string { return fmt.Sprint([]string(*s)) }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
