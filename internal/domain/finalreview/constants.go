package finalreview

const (
	SlotEmployee   = "employee"
	SlotSupervisor = "supervisor"
	SlotDivisional = "divisional"
)

var slotLabels = map[string]string{
	SlotEmployee:   "employee signature",
	SlotSupervisor: "supervisor signature",
	SlotDivisional: "divisional head signature",
}
