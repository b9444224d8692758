package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/academic"
	"github.com/trezcool/gradebook/core/gradebook"
	"github.com/trezcool/gradebook/core/roster"
	"github.com/trezcool/gradebook/core/stats"
	"github.com/trezcool/gradebook/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
	errQuit = errors.New("quit")
)

type commandLine struct {
	session *gradebook.Session
	out     io.Writer
}

func (cli *commandLine) printUsage() {
	cli.println("Commands:")
	cli.println("  login -login NAME                                        - log in (the secret is prompted next)")
	cli.println("  logout                                                   - log out")
	cli.println("  whoami                                                   - show the logged in user")
	cli.println("  classes | teachers | students                            - list what you can see")
	cli.println("  addclass -name NAME                                      - add a class")
	cli.println("  delclass -id ID                                          - delete an unused class")
	cli.println("  addteacher -name NAME -login LOGIN -subjects A,B [-classes ID,ID] [-avatar GLYPH]")
	cli.println("  addstudent -name NAME -login LOGIN -class ID [-avatar GLYPH]")
	cli.println("  delstudent -id ID                                        - delete a student and their grades")
	cli.println("  grade -student ID -subject SUBJECT -value 2..5           - record a grade")
	cli.println("  schedule -class ID -weekday DAY -time HH:MM -subject SUBJECT")
	cli.println("  homework -class ID -subject SUBJECT -desc TEXT -due YYYY-MM-DD")
	cli.println("  profile [-name NAME] [-avatar GLYPH]                     - update your profile")
	cli.println("  dashboard                                                - show your dashboard")
	cli.println("  stats                                                    - show statistics")
	cli.println("  top [-n N]                                               - show the best students")
	cli.println("  help | quit")
}

func (cli *commandLine) println(a ...interface{}) {
	_, _ = fmt.Fprintln(cli.out, a...)
}

func (cli *commandLine) printf(format string, a ...interface{}) {
	_, _ = fmt.Fprintf(cli.out, format, a...)
}

func (cli *commandLine) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

// parse parses args into fs; it reports errHelp when one of the required flags is blank.
func parse(fs *flag.FlagSet, args []string, required ...*string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errHelp
		}
		return err
	}
	for _, r := range required {
		if core.CleanString(*r) == "" {
			fs.Usage()
			return errHelp
		}
	}
	return nil
}

func (cli *commandLine) readSecret(prompt string) (string, error) {
	cli.printf("%s:", prompt)
	secret, err := readPasswordFunc(int(syscall.Stdin))
	cli.println()
	if err != nil {
		return "", err
	}
	return string(secret), nil
}

// run executes a single command line; args[0] is the command name.
func (cli *commandLine) run(args []string) error {
	if len(args) == 0 {
		return nil
	}

	switch args[0] {
	case "help":
		cli.printUsage()
		return nil
	case "quit", "exit":
		return errQuit
	case "login":
		return cli.login(args[1:])
	case "logout":
		cli.session.Logout()
		cli.println("Logged out.")
		return nil
	case "whoami":
		usr, ok := cli.session.CurrentUser()
		if !ok {
			return gradebook.ErrNotAuthenticated
		}
		cli.printf("%s %s (%s, %s)\n", usr.AvatarGlyph, usr.DisplayName, usr.LoginName, usr.Role)
		return nil
	case "classes":
		return cli.listClasses()
	case "teachers":
		return cli.listTeachers()
	case "students":
		return cli.listStudents()
	case "addclass":
		return cli.addClass(args[1:])
	case "delclass":
		return cli.deleteClass(args[1:])
	case "addteacher":
		return cli.addTeacher(args[1:])
	case "addstudent":
		return cli.addStudent(args[1:])
	case "delstudent":
		return cli.deleteStudent(args[1:])
	case "grade":
		return cli.addGrade(args[1:])
	case "schedule":
		return cli.addSchedule(args[1:])
	case "homework":
		return cli.addHomework(args[1:])
	case "profile":
		return cli.updateProfile(args[1:])
	case "dashboard":
		return cli.dashboard()
	case "stats":
		return cli.stats()
	case "top":
		return cli.top(args[1:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) login(args []string) error {
	cmd := cli.flagSet("login")
	loginName := cmd.String("login", "", "The login name. The secret will be prompted next.")
	if err := parse(cmd, args, loginName); err != nil {
		return err
	}
	secret, err := cli.readSecret("Enter secret")
	if err != nil {
		return err
	}
	usr, err := cli.session.Login(core.CleanString(*loginName), secret)
	if err != nil {
		return err
	}
	cli.printf("Welcome, %s!\n", usr.DisplayName)
	return nil
}

func (cli *commandLine) listClasses() error {
	a, err := cli.session.Actor()
	if err != nil {
		return err
	}
	classes, err := cli.session.Gradebook().Classes(a)
	if err != nil {
		return err
	}
	for _, cls := range classes {
		cli.printf("%s  %s\n", cls.ID, cls.Name)
	}
	return nil
}

func (cli *commandLine) listTeachers() error {
	a, err := cli.session.Actor()
	if err != nil {
		return err
	}
	teachers, err := cli.session.Gradebook().Teachers(a)
	if err != nil {
		return err
	}
	for _, t := range teachers {
		cli.printf("%s  %s %s (%s): %s\n", t.ID, t.AvatarGlyph, t.DisplayName, t.LoginName, strings.Join(t.Subjects, ", "))
	}
	return nil
}

func (cli *commandLine) listStudents() error {
	a, err := cli.session.Actor()
	if err != nil {
		return err
	}
	students, err := cli.session.Gradebook().Students(a)
	if err != nil {
		return err
	}
	cli.printStudents(students)
	return nil
}

func (cli *commandLine) printStudents(students []roster.Student) {
	for _, s := range students {
		cli.printf("%s  %s %s (%s) class %s\n", s.ID, s.AvatarGlyph, s.DisplayName, s.LoginName, s.ClassID)
	}
}

func (cli *commandLine) addClass(args []string) error {
	cmd := cli.flagSet("addclass")
	name := cmd.String("name", "", "The class name, e.g. 9A.")
	if err := parse(cmd, args, name); err != nil {
		return err
	}
	a, err := cli.session.Actor()
	if err != nil {
		return err
	}
	cls, err := cli.session.Gradebook().AddClass(a, roster.NewClass{Name: *name})
	if err != nil {
		return err
	}
	cli.printf("Class %s added: %s\n", cls.Name, cls.ID)
	return nil
}

func (cli *commandLine) deleteClass(args []string) error {
	cmd := cli.flagSet("delclass")
	id := cmd.String("id", "", "The class ID.")
	if err := parse(cmd, args, id); err != nil {
		return err
	}
	a, err := cli.session.Actor()
	if err != nil {
		return err
	}
	if err := cli.session.Gradebook().DeleteClass(a, *id); err != nil {
		return err
	}
	cli.println("Class deleted.")
	return nil
}

func (cli *commandLine) addTeacher(args []string) error {
	cmd := cli.flagSet("addteacher")
	name := cmd.String("name", "", "The teacher's display name.")
	loginName := cmd.String("login", "", "The login name. The secret will be prompted next.")
	subjects := cmd.String("subjects", "", "Comma separated subjects.")
	classes := cmd.String("classes", "", "Comma separated class IDs.")
	avatar := cmd.String("avatar", "", "The avatar glyph.")
	if err := parse(cmd, args, name, loginName, subjects); err != nil {
		return err
	}
	a, err := cli.session.Actor()
	if err != nil {
		return err
	}
	secret, err := cli.readSecret("Enter secret")
	if err != nil {
		return err
	}
	t, err := cli.session.Gradebook().AddTeacher(a, roster.NewTeacher{
		DisplayName: *name,
		LoginName:   *loginName,
		Secret:      secret,
		Subjects:    splitList(*subjects),
		ClassIDs:    splitList(*classes),
		AvatarGlyph: *avatar,
	})
	if err != nil {
		return err
	}
	cli.printf("Teacher %s added: %s\n", t.DisplayName, t.ID)
	return nil
}

func (cli *commandLine) addStudent(args []string) error {
	cmd := cli.flagSet("addstudent")
	name := cmd.String("name", "", "The student's display name.")
	loginName := cmd.String("login", "", "The login name. The secret will be prompted next.")
	classID := cmd.String("class", "", "The class ID.")
	avatar := cmd.String("avatar", "", "The avatar glyph.")
	if err := parse(cmd, args, name, loginName, classID); err != nil {
		return err
	}
	a, err := cli.session.Actor()
	if err != nil {
		return err
	}
	secret, err := cli.readSecret("Enter secret")
	if err != nil {
		return err
	}
	s, err := cli.session.Gradebook().AddStudent(a, roster.NewStudent{
		DisplayName: *name,
		LoginName:   *loginName,
		Secret:      secret,
		ClassID:     *classID,
		AvatarGlyph: *avatar,
	})
	if err != nil {
		return err
	}
	cli.printf("Student %s added: %s\n", s.DisplayName, s.ID)
	return nil
}

func (cli *commandLine) deleteStudent(args []string) error {
	cmd := cli.flagSet("delstudent")
	id := cmd.String("id", "", "The student ID.")
	if err := parse(cmd, args, id); err != nil {
		return err
	}
	a, err := cli.session.Actor()
	if err != nil {
		return err
	}
	if err := cli.session.Gradebook().DeleteStudent(a, *id); err != nil {
		return err
	}
	cli.println("Student deleted.")
	return nil
}

func (cli *commandLine) addGrade(args []string) error {
	cmd := cli.flagSet("grade")
	studentID := cmd.String("student", "", "The student ID.")
	subject := cmd.String("subject", "", "The subject.")
	value := cmd.Int("value", 0, "The grade, from 2 to 5.")
	if err := parse(cmd, args, studentID, subject); err != nil {
		return err
	}
	a, err := cli.session.Actor()
	if err != nil {
		return err
	}
	g, err := cli.session.Gradebook().AddGrade(a, academic.NewGrade{StudentID: *studentID, Subject: *subject, Value: *value})
	if err != nil {
		return err
	}
	cli.printf("Grade %d in %s recorded.\n", g.Value, g.Subject)
	return nil
}

func (cli *commandLine) addSchedule(args []string) error {
	cmd := cli.flagSet("schedule")
	classID := cmd.String("class", "", "The class ID.")
	weekday := cmd.String("weekday", "", "monday..saturday")
	at := cmd.String("time", "", "The lesson time, HH:MM.")
	subject := cmd.String("subject", "", "The subject.")
	if err := parse(cmd, args, classID, weekday, at, subject); err != nil {
		return err
	}
	a, err := cli.session.Actor()
	if err != nil {
		return err
	}
	sch, err := cli.session.Gradebook().AddSchedule(a, academic.NewSchedule{ClassID: *classID, Weekday: *weekday, Time: *at, Subject: *subject})
	if err != nil {
		return err
	}
	cli.printf("%s lesson on %s at %s added.\n", sch.Subject, sch.Weekday, sch.Time)
	return nil
}

func (cli *commandLine) addHomework(args []string) error {
	cmd := cli.flagSet("homework")
	classID := cmd.String("class", "", "The class ID.")
	subject := cmd.String("subject", "", "The subject.")
	desc := cmd.String("desc", "", "The assignment.")
	due := cmd.String("due", "", "The due date, YYYY-MM-DD.")
	if err := parse(cmd, args, classID, subject, desc, due); err != nil {
		return err
	}
	a, err := cli.session.Actor()
	if err != nil {
		return err
	}
	hw, err := cli.session.Gradebook().AddHomework(a, academic.NewHomework{ClassID: *classID, Subject: *subject, Description: *desc, DueDate: *due})
	if err != nil {
		return err
	}
	cli.printf("%s homework due %s added.\n", hw.Subject, hw.DueDate.Format("2006-01-02"))
	return nil
}

func (cli *commandLine) updateProfile(args []string) error {
	cmd := cli.flagSet("profile")
	name := cmd.String("name", "", "The new display name.")
	avatar := cmd.String("avatar", "", "The new avatar glyph.")
	if err := parse(cmd, args); err != nil {
		return err
	}
	a, err := cli.session.Actor()
	if err != nil {
		return err
	}
	usr, err := cli.session.Gradebook().UpdateProfile(a, a.Account().ID, user.ProfileUpdate{DisplayName: *name, AvatarGlyph: *avatar})
	if err != nil {
		return err
	}
	cli.printf("Profile updated: %s %s\n", usr.AvatarGlyph, usr.DisplayName)
	return nil
}

func (cli *commandLine) dashboard() error {
	a, err := cli.session.Actor()
	if err != nil {
		return err
	}
	dash, err := cli.session.Gradebook().Dashboard(a)
	if err != nil {
		return err
	}

	usr := dash.Account()
	cli.printf("%s %s\n", usr.AvatarGlyph, usr.DisplayName)
	switch d := dash.(type) {
	case gradebook.AdminDashboard:
		cli.printf("classes: %d, teachers: %d, students: %d, grades: %d\n", len(d.Classes), len(d.Teachers), len(d.Students), len(d.Grades))
		cli.printSummary(d.Stats)
	case gradebook.TeacherDashboard:
		cli.printf("subjects: %s\n", strings.Join(d.Teacher.Subjects, ", "))
		cli.printf("classes: %d, students: %d, grades: %d\n", len(d.Classes), len(d.Students), len(d.Grades))
		cli.printSchedules(d.Schedules)
		cli.printSummary(d.Stats)
	case gradebook.StudentDashboard:
		cli.printf("class: %s, average: %s\n", d.Class.Name, stats.Format(d.Average))
		for _, g := range d.Grades {
			cli.printf("  %s  %-20s %d\n", g.Date.Format("2006-01-02"), g.Subject, g.Value)
		}
		cli.printSchedules(d.Schedules)
		for _, hw := range d.Homework {
			cli.printf("  due %s  %s: %s\n", hw.DueDate.Format("2006-01-02"), hw.Subject, hw.Description)
		}
	}
	return nil
}

func (cli *commandLine) printSchedules(schedules []academic.Schedule) {
	for _, sch := range schedules {
		cli.printf("  %-9s %s  %s\n", sch.Weekday, sch.Time, sch.Subject)
	}
}

func (cli *commandLine) stats() error {
	a, err := cli.session.Actor()
	if err != nil {
		return err
	}
	summary, err := cli.session.Gradebook().Summary(a)
	if err != nil {
		return err
	}
	cli.printSummary(summary)
	return nil
}

func (cli *commandLine) printSummary(s gradebook.Summary) {
	cli.printf("overall average: %s\n", stats.Format(s.Overall))
	for _, subj := range s.Subjects {
		cli.printf("  %-20s %s (%d)\n", subj.Subject, stats.Format(subj.Average), subj.Count)
	}
	for _, cls := range s.Classes {
		cli.printf("  class %-14s %s\n", cls.Class.Name, stats.Format(cls.Average))
	}
	for v := 5; v >= 2; v-- {
		cli.printf("  %d: %d (%s%%)\n", v, s.Distribution.Count(v), stats.FormatPercentage(s.Distribution.Percentage(v)))
	}
}

func (cli *commandLine) top(args []string) error {
	cmd := cli.flagSet("top")
	n := cmd.Int("n", 0, "How many students to list.")
	if err := parse(cmd, args); err != nil {
		return err
	}
	a, err := cli.session.Actor()
	if err != nil {
		return err
	}
	top, err := cli.session.Gradebook().TopStudents(a, *n)
	if err != nil {
		return err
	}
	for i, st := range top {
		cli.printf("%d. %s %s\n", i+1, st.Student.DisplayName, stats.Format(st.Average))
	}
	return nil
}

// report prints err, listing field errors one per line.
func (cli *commandLine) report(err error) {
	if fldErrs := core.FieldErrors(err, cli.session.Gradebook().Translator()); fldErrs != nil {
		fields := make([]string, 0, len(fldErrs))
		for f := range fldErrs {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		cli.println("invalid input:")
		for _, f := range fields {
			cli.printf("  %s: %s\n", f, fldErrs[f])
		}
		return
	}
	cli.printf("error: %v\n", err)
}

func splitList(s string) []string {
	if core.CleanString(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// splitArgs splits a command line on blanks; double quotes group words.
func splitArgs(line string) []string {
	var args []string
	var cur strings.Builder
	inQuotes, started := false, false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			started = true
		case (r == ' ' || r == '\t') && !inQuotes:
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if started {
		args = append(args, cur.String())
	}
	return args
}
