package ai

import (
	"encoding/json"
	"fmt"

	"github.com/chandrakumar-sys/bank-support-bot/internal/dataset"
)

// BuildPrompt builds the grounded prompt for one customer question. The
// model is told to answer only from the supplied account data.
func BuildPrompt(customer dataset.Customer, loan dataset.LoanDetails, userMessage string) string {
	fees, _ := json.MarshalIndent(loan.Fees, "", "  ")

	return fmt.Sprintf(`You are a professional banking support AI.

Customer details:
- Name: %s
- Email: %s

Loan details:
- EMI Due Date: %s
- EMI Amount: %s
- EMI Status: %s

Fees:
%s

User question:
"""%s"""

Write a helpful reply in banking tone.
Keep it short and factual based only on the above data.
End with:
"Regards,
Bank Support Team"`,
		customer.Name, customer.Email,
		loan.EMIDueDate, loan.EMIAmount, loan.EMIStatus,
		fees, userMessage)
}
