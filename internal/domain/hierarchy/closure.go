package hierarchy

// ClosureRow is one edge of the materialized supervisor→report
// transitive closure. Level 1 is a direct report.
type ClosureRow struct {
	SupervisorID string
	ReportID     string
	Level        int
}

// BuildClosure flattens the supervisor chain of every employee into
// closure rows. Input maps employee to direct supervisor; employees
// without one map to the empty string. Cycles are cut instead of
// looping.
func BuildClosure(supervisorOf map[string]string) []ClosureRow {
	var rows []ClosureRow
	for employee := range supervisorOf {
		seen := map[string]bool{employee: true}
		level := 1
		for supervisor := supervisorOf[employee]; supervisor != ""; supervisor = supervisorOf[supervisor] {
			if seen[supervisor] {
				break
			}
			seen[supervisor] = true
			rows = append(rows, ClosureRow{SupervisorID: supervisor, ReportID: employee, Level: level})
			level++
		}
	}
	return rows
}
