// Command planner is the interactive capacity planning client.  It
// connects to the API with a bearer token and walks the operator
// through selecting a lab and class, then assigning students to seats
// and groups to computers.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/labsyncpro/labsyncpro/internal/client"
	"github.com/labsyncpro/labsyncpro/internal/planner"
)

// stdinConfirmer prompts on stdout and reads a yes/no answer from
// stdin.  Anything but an explicit yes counts as declining.
type stdinConfirmer struct {
	in *bufio.Reader
}

func (s *stdinConfirmer) Confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	line, err := s.in.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// printNotifier writes notifications to stdout with a severity tag.
type printNotifier struct{}

func (printNotifier) Info(msg string)  { fmt.Println("[info] " + msg) }
func (printNotifier) Warn(msg string)  { fmt.Println("[warn] " + msg) }
func (printNotifier) Error(msg string) { fmt.Println("[error] " + msg) }

func main() {
	_ = godotenv.Load()

	baseURL := os.Getenv("PLANNER_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	token := os.Getenv("PLANNER_TOKEN")
	if token == "" {
		log.Fatal("PLANNER_TOKEN is required (obtain one via POST /v1/auth/login)")
	}

	api := client.New(baseURL, token)
	in := bufio.NewReader(os.Stdin)
	p := planner.New(api, api, api, api, &stdinConfirmer{in: in}, printNotifier{})

	fmt.Println("capacity planner - type 'help' for commands")
	for {
		fmt.Print("> ")
		line, err := in.ReadString('\n')
		if err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		ctx := context.Background()
		switch fields[0] {
		case "help":
			printHelp()
		case "quit", "exit":
			return
		case "labs":
			labs, err := p.Labs(ctx)
			if err != nil {
				continue
			}
			for _, l := range labs {
				fmt.Printf("  %3d  %-24s %-6s computers=%d seats=%d\n", l.ID, l.Name, l.Code, l.ComputerCount, l.SeatCount)
			}
		case "lab":
			id, ok := argID(fields, 1)
			if !ok {
				fmt.Println("usage: lab <id>")
				continue
			}
			if err := p.SelectLab(ctx, id); err == nil {
				fmt.Printf("selected lab %d\n", id)
			}
		case "classes":
			for _, cl := range p.Classes() {
				fmt.Printf("  %3d  %-16s groups=%d students=%d\n", cl.ID, cl.Name, cl.GroupCount, cl.StudentCount)
			}
		case "class":
			id, ok := argID(fields, 1)
			if !ok {
				fmt.Println("usage: class <id>")
				continue
			}
			if err := p.SelectClass(ctx, id); err == nil {
				fmt.Printf("selected class %d\n", id)
				if s := p.Schedule(); s != nil {
					fmt.Printf("schedule %d on %s (%s-%s)\n", s.ID, s.ScheduledDate, s.StartTime, s.EndTime)
				} else {
					fmt.Println("no schedule yet; one will be created on first assignment")
				}
			}
		case "seats":
			assignments := p.SeatAssignments()
			for _, s := range p.Seats() {
				status := p.SeatStatus(s.ID)
				who := ""
				if a, ok := assignments[s.ID]; ok {
					who = a.StudentName
				}
				fmt.Printf("  seat %2d (#%d)  %-12s %s\n", s.SeqNumber, s.ID, status, who)
			}
		case "computers":
			assignments := p.ComputerAssignments()
			for _, cp := range p.Computers() {
				state := "available"
				if !cp.IsFunctional {
					state = "broken"
				}
				who := ""
				if a, ok := assignments[cp.ID]; ok {
					state = "assigned"
					if a.GroupName != nil {
						who = *a.GroupName
					} else if a.StudentName != nil {
						who = *a.StudentName
					}
				}
				fmt.Printf("  %-14s (#%d)  %-10s %s\n", cp.Name, cp.ID, state, who)
			}
		case "roster":
			r := p.Roster()
			fmt.Println("students:")
			for _, s := range r.Students {
				fmt.Printf("  %3d  %s\n", s.ID, s.FullName)
			}
			fmt.Println("groups:")
			for _, g := range r.Groups {
				fmt.Printf("  %3d  %s (max %d)\n", g.ID, g.Name, g.MaxMembers)
				for _, m := range g.Members {
					fmt.Printf("        %s [%s]\n", m.FullName, m.Role)
				}
			}
		case "assign-seat":
			studentID, ok1 := argID(fields, 1)
			seatID, ok2 := argID(fields, 2)
			if !ok1 || !ok2 {
				fmt.Println("usage: assign-seat <student-id> <seat-id>")
				continue
			}
			_ = p.AssignSeat(ctx, studentID, seatID)
		case "assign-pc":
			groupID, ok1 := argID(fields, 1)
			computerID, ok2 := argID(fields, 2)
			if !ok1 || !ok2 {
				fmt.Println("usage: assign-pc <group-id> <computer-id>")
				continue
			}
			_ = p.AssignComputerToGroup(ctx, groupID, computerID)
		case "unassign-seat":
			id, ok := argID(fields, 1)
			if !ok {
				fmt.Println("usage: unassign-seat <assignment-id>")
				continue
			}
			_ = p.UnassignSeat(ctx, id)
		case "unassign-pc":
			groupID, ok := argID(fields, 1)
			if !ok {
				fmt.Println("usage: unassign-pc <group-id>")
				continue
			}
			_ = p.UnassignComputerFromGroup(ctx, groupID)
		case "unassigned":
			students, err := p.UnassignedStudents(ctx)
			if err != nil {
				continue
			}
			for _, s := range students {
				fmt.Printf("  %3d  %s\n", s.ID, s.FullName)
			}
		case "available":
			for _, cp := range p.AvailableComputers() {
				fmt.Printf("  %-14s (#%d)\n", cp.Name, cp.ID)
			}
		case "refresh":
			_ = p.RefreshAssignments(ctx)
		case "export":
			lab := p.Lab()
			if lab == nil {
				fmt.Println("select a lab first")
				continue
			}
			var scheduleID uint64
			if s := p.Schedule(); s != nil {
				scheduleID = s.ID
			}
			name := fmt.Sprintf("capacity-lab-%d.xlsx", lab.ID)
			if len(fields) > 1 {
				name = fields[1]
			}
			data, err := api.DownloadWorkbook(ctx, lab.ID, scheduleID)
			if err != nil {
				fmt.Println("export failed: " + err.Error())
				continue
			}
			if err := os.WriteFile(name, data, 0o644); err != nil {
				fmt.Println("write failed: " + err.Error())
				continue
			}
			fmt.Printf("wrote %s (%d bytes)\n", name, len(data))
		default:
			fmt.Println("unknown command; type 'help'")
		}
	}
}

func argID(fields []string, i int) (uint64, bool) {
	if len(fields) <= i {
		return 0, false
	}
	id, err := strconv.ParseUint(fields[i], 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func printHelp() {
	fmt.Print(`commands:
  labs                          list labs
  lab <id>                      select a lab
  classes                       list classes for the selected lab
  class <id>                    select a class
  seats                         show seats with status and occupant
  computers                     show computers with assignee
  available                     show assignable computers
  roster                        show students and groups of the class
  assign-seat <student> <seat>  assign a student to a seat
  assign-pc <group> <computer>  assign a group to a computer
  unassign-seat <assignment>    release a seat assignment
  unassign-pc <group>           release the group's computer
  unassigned                    students without a seat
  refresh                       re-fetch assignment views
  export [file]                 save the lab's capacity workbook (.xlsx)
  quit
`)
}
