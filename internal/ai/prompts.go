package ai

import "fmt"

// AdvisorSystemPrompt frames the general maintenance chat assistant
const AdvisorSystemPrompt = `You are a Hospital Equipment Maintenance Bot. You help hospital staff with equipment maintenance, troubleshooting, and scheduling.

Your capabilities include:
- Equipment maintenance guidance
- Troubleshooting common issues
- Maintenance scheduling assistance
- Equipment status monitoring
- Maintenance best practices
- Safety protocols

Always provide helpful, accurate, and professional responses. If you need specific equipment information, ask for clarification.`

// FallbackAdvice is returned in place of a completion when the upstream
// service fails and fallback mode is enabled.
const FallbackAdvice = "I'm sorry, I'm having trouble connecting to my maintenance knowledge base right now. Please try again in a moment, or contact your maintenance supervisor for immediate assistance."

// ChatPrompt builds the system prompt for the general chat endpoint,
// injecting record context when ids are supplied.
func ChatPrompt(equipmentID, maintenanceID string) (string, GenOptions) {
	system := AdvisorSystemPrompt
	if equipmentID != "" {
		system += fmt.Sprintf("\n\nCurrent equipment context: Equipment ID %s", equipmentID)
	}
	if maintenanceID != "" {
		system += fmt.Sprintf("\n\nCurrent maintenance context: Maintenance ID %s", maintenanceID)
	}
	return system, GenOptions{MaxTokens: 500, Temperature: 0.7}
}

// SuggestionsPrompt asks for maintenance suggestions for an equipment type,
// optionally narrowed by a reported issue.
func SuggestionsPrompt(equipmentType, issue string) (string, string, GenOptions) {
	system := "You are a hospital equipment maintenance expert. Provide detailed, professional maintenance guidance."
	user := "Provide maintenance suggestions for hospital equipment. "
	if equipmentType != "" {
		user += fmt.Sprintf("Equipment type: %s. ", equipmentType)
	}
	if issue != "" {
		user += fmt.Sprintf("Reported issue: %s. ", issue)
	}
	user += `Please provide:
1. Immediate troubleshooting steps
2. Preventive maintenance recommendations
3. Safety considerations
4. When to contact a technician
5. Common causes and solutions`
	return system, user, GenOptions{MaxTokens: 800, Temperature: 0.5}
}

// TroubleshootingPrompt asks for a step-by-step guide matching the symptoms
func TroubleshootingPrompt(symptoms string) (string, string, GenOptions) {
	system := "You are a hospital equipment troubleshooting expert. Provide clear, safe, and systematic troubleshooting guidance."
	user := fmt.Sprintf(`Provide a troubleshooting guide for hospital equipment with the following symptoms: %s.

Please include:
1. Step-by-step troubleshooting procedure
2. Safety precautions
3. When to stop and call a technician
4. Common solutions
5. Preventive measures`, symptoms)
	return system, user, GenOptions{MaxTokens: 1000, Temperature: 0.3}
}

// SchedulePrompt asks for interval recommendations for an equipment type
func SchedulePrompt(equipmentType, usage, criticality string) (string, string, GenOptions) {
	system := "You are a hospital equipment maintenance scheduling expert. Provide comprehensive maintenance scheduling recommendations."
	user := fmt.Sprintf("Provide maintenance schedule recommendations for %s hospital equipment. ", equipmentType)
	if usage != "" {
		user += fmt.Sprintf("Usage level: %s. ", usage)
	}
	if criticality != "" {
		user += fmt.Sprintf("Criticality level: %s. ", criticality)
	}
	user += `Please provide:
1. Recommended maintenance intervals
2. Different types of maintenance (daily, weekly, monthly, quarterly, annual)
3. Key maintenance tasks for each interval
4. Warning signs to watch for
5. Documentation requirements`
	return system, user, GenOptions{MaxTokens: 1000, Temperature: 0.4}
}

// SafetyPrompt asks for safety protocols for maintaining an equipment type
func SafetyPrompt(equipmentType, maintenanceType string) (string, string, GenOptions) {
	system := "You are a hospital safety expert. Provide comprehensive safety protocols for equipment maintenance."
	user := fmt.Sprintf("Provide safety protocols for %s hospital equipment maintenance. ", equipmentType)
	if maintenanceType != "" {
		user += fmt.Sprintf("Maintenance type: %s. ", maintenanceType)
	}
	user += `Please include:
1. Pre-maintenance safety checks
2. Personal protective equipment requirements
3. Safety procedures during maintenance
4. Emergency procedures
5. Post-maintenance safety verification
6. Staff training requirements`
	return system, user, GenOptions{MaxTokens: 1000, Temperature: 0.2}
}
