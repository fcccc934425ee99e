package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go-sales-agent/internal/models"
	"go-sales-agent/internal/utils"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const maxToolRounds = 5

// DataSource is what the assistant reads sales data from.
type DataSource interface {
	ListSales(ctx context.Context, f models.Filter) []models.Sale
	ListLeaves(ctx context.Context, f models.Filter) []models.Leave
	ListSalesmen(ctx context.Context) []models.User
}

// Agent answers admin questions about sales and leaves with Gemini, letting
// the model call report tools over the live (or cached) data.
type Agent struct {
	client *genai.Client
	model  string
	data   DataSource
	now    func() time.Time
}

func NewAgent(ctx context.Context, apiKey, model string, data DataSource) (*Agent, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Agent{client: client, model: model, data: data, now: time.Now}, nil
}

func (a *Agent) Close() error {
	if a.client == nil {
		return nil
	}
	return a.client.Close()
}

func (a *Agent) systemPrompt(message string) string {
	return fmt.Sprintf(`SYSTEM: Today is %s. You are the sales assistant of a retail sales team. Amounts are in AED.

	RULES:
	1. SALES: For revenue, totals or transaction counts, call 'get_sales_report' with the date range.
	   "This month" means the first of the month until today.
	2. BRANDS: For best-selling brands, call 'get_top_brands'.
	3. PEOPLE: For the best salesman of a month call 'get_top_performer'; to resolve a name to a
	   salesman ID call 'list_salesmen'. Never invent IDs.
	4. LEAVE: For who is on leave, call 'get_leave_stats'.
	5. Answer from the tool results only. If a tool returns an error, say so plainly.

	USER: %s`, utils.Today(a.now()), message)
}

// Ask runs one question through the model, answering its tool calls until
// it replies with text.
func (a *Agent) Ask(ctx context.Context, message string) (string, error) {
	model := a.client.GenerativeModel(a.model)
	model.Tools = []*genai.Tool{{FunctionDeclarations: toolDeclarations}}

	session := model.StartChat()
	resp, err := session.SendMessage(ctx, genai.Text(a.systemPrompt(message)))
	if err != nil {
		return "", err
	}

	for round := 0; round < maxToolRounds; round++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			return printResponse(resp), nil
		}
		answers := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			log.Printf("🤖 Assistant tool call: %s %v", call.Name, call.Args)
			answers = append(answers, genai.FunctionResponse{Name: call.Name, Response: a.executeTool(ctx, call)})
		}
		if resp, err = session.SendMessage(ctx, answers...); err != nil {
			return "", err
		}
	}
	return "", errors.New("assistant did not finish within the tool call limit")
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	var calls []genai.FunctionCall
	for _, part := range resp.Candidates[0].Content.Parts {
		if fc, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, fc)
		}
	}
	return calls
}

func printResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "I could not come up with an answer."
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return "I completed the action."
}
