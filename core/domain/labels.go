package domain

var severityColors = map[Severity]string{
	SeverityCritical: "#dc2626",
	SeverityHigh:     "#ea580c",
	SeverityMedium:   "#ca8a04",
	SeverityLow:      "#16a34a",
	SeverityUnknown:  "#6b7280",
}

var severityLabels = map[Severity]string{
	SeverityCritical: "Critical",
	SeverityHigh:     "High",
	SeverityMedium:   "Medium",
	SeverityLow:      "Low",
	SeverityUnknown:  "Unknown",
}

var statusColors = map[Status]string{
	StatusOpen:       "#dc2626",
	StatusInProgress: "#ca8a04",
	StatusClosed:     "#16a34a",
}

var statusLabels = map[Status]string{
	StatusOpen:       "Open",
	StatusInProgress: "In Progress",
	StatusClosed:     "Closed",
}

// SeverityColor returns the hex color used for a severity, gray when unknown
func SeverityColor(s Severity) string {
	if c, ok := severityColors[s]; ok {
		return c
	}
	return severityColors[SeverityUnknown]
}

func SeverityLabel(s Severity) string {
	if l, ok := severityLabels[s]; ok {
		return l
	}
	return severityLabels[SeverityUnknown]
}

func StatusColor(s Status) string {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return statusColors[StatusOpen]
}

func StatusLabel(s Status) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}
