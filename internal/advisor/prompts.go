package advisor

import (
	"fmt"
	"strings"
)

const (
	workflowStartLabel = "__Starting Deep Analysis Workflow__\n\n"
	stepOneLabel       = "**Step 1: Categorizing data (GPT-4o-mini)...**\n"
	stepTwoLabel       = "**Step 2: Deep Analysis (Simulating GPT-5)...**\n"
	stepTwoResult      = "Deep pattern recognition complete. Identified potential savings of 15%.\n\n"
	stepThreeLabel     = "**Step 3: Creating Detailed Savings Plan (Advanced Reasoning)...**\n\n"

	categorizePrompt = "You are a data analyst. Summarize the transaction data provided into 3 main spending categories."
)

const guidelines = `Guidelines:
- Be concise but thorough
- Give specific, actionable recommendations based on the user's data and survey goals
- Use numbers/percentages
- No specific investment advice
- STRICT GUARDRAIL: YOU MUST REFUSE TO ANSWER ANY QUESTIONS THAT ARE NOT RELATED TO PERSONAL FINANCE, BUDGETING, SAVING, SPENDING HABITS, OR INVESTING. If the user asks about anything else (e.g., politics, coding, general knowledge), politely decline and steer them back to finance.
`

func modelLabel(label string) string {
	return fmt.Sprintf("__Using %s__\n\n", label)
}

// SystemPrompt builds the advisor persona prompt around the optional contexts.
func SystemPrompt(financialContext, surveyContext string) string {
	var sb strings.Builder
	sb.WriteString("You are Origin, a professional AI financial advisor.\n\n")

	if financialContext != "" {
		fmt.Fprintf(&sb, "Here is user financial data: %s\n\n", financialContext)
	} else {
		sb.WriteString("User has not connected bank account.\n\n")
	}

	if surveyContext != "" {
		fmt.Fprintf(&sb, "User Survey Analysis (Goals & Behavior): %s\n\n", surveyContext)
	}

	sb.WriteString(guidelines)
	return sb.String()
}

func planPrompt(summary string) string {
	return fmt.Sprintf("You are a financial planner. Based on this summary: %s, create a detailed savings plan.", summary)
}

const surveySystemPrompt = `You are a behavioral finance expert. Analyze the user's survey responses to identify their spending psychology.

Output MUST be valid JSON with this structure:
{
    "spending_regret": "string (analysis of what they regret and why)",
    "user_goals": "string (analysis of their main financial goals)",
    "top_categories": ["string", "string", "string", "string", "string"] (5 most relevant spending categories based on their answers and regret)
}`

func surveyUserPrompt(financialContext, answersJSON string) string {
	return fmt.Sprintf(`User Financial Context: %s

Survey Answers:
%s

Analyze the user's financial personality, regrets, and goals.`, financialContext, answersJSON)
}

const summarySystemPrompt = "You are a behavioral finance expert. Provide a concise (2-3 sentences) summary of the user's spending behavior based on their recent transactions and profile."

func summaryUserPrompt(transactions, profileJSON string) string {
	return fmt.Sprintf(`Recent Transactions:
%s

User Profile:
%s

Analyze the user's financial behavior. Be encouraging but realistic.`, transactions, profileJSON)
}

const regretSystemPrompt = `You are a behavioral finance expert. Predict how much the user will regret a single purchase given their survey profile.

Output MUST be valid JSON with this structure:
{
    "regret_score": integer from 0 (no regret) to 100 (certain regret),
    "regret_reason": "string (one sentence explaining the score)"
}`

func regretUserPrompt(transaction, profileJSON string) string {
	return fmt.Sprintf(`Transaction:
%s

User Profile:
%s

Score the likely regret for this transaction.`, transaction, profileJSON)
}
