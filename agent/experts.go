package agent

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/nkhyl/folio"
	"github.com/nkhyl/folio/bridge"
	"github.com/nkhyl/folio/docs"
	"github.com/nkhyl/folio/renderer"
)

const model = "gemini-2.5-pro"

// newFacilitator fronts the expert team. It owns the conversation with
// the user and calls the experts like functions.
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You run the conversation and solve the user's request.

			The tools are experts at your service; they keep the context of
			your previous questions. Learn each expert's speciality from its
			description and plan which ones to ask.

			The user asks about the instruments in their own portfolio.
			Check the portfolio first so you know what their tickers are,
			then answer with the figures you were given, never with
			estimates.
			`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewScout is the outward-looking expert: it researches instruments with
// live search rather than the portfolio files.
func NewScout() *Expert {
	return &Expert{
		Name: "Scout",
		Description: `Researches companies, funds and markets with live web
		search. Ask the Scout for anything recent or external: headlines,
		earnings coverage, analyst moves, market context.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You research financial instruments. Ground every assertion in a
			search result and say when coverage is thin; the tickers you are
			given may be small or foreign listings. Prefer fresh sources and
			mention their dates.
			`}}},
		},
	}
}

// NewAnalyst is the inward-looking expert: its tools read the snapshot
// and news histories that the refresh maintains.
func NewAnalyst(cfg bridge.Config) *Expert {
	lib := []Function{listHoldings(cfg), getNews(cfg), portfolioSummary(cfg)}
	return &Expert{
		Name: "Analyst",
		Description: `Knows the user's portfolio: holdings, valuations,
		dividends, FX effects and the stored headlines per instrument. Ask
		the Analyst anything about what the user actually owns.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You analyse the user's portfolio with the tools, which read the
			latest recorded snapshot. Quote figures exactly as the tools
			report them, currency symbols included. When a ticker is not in
			the portfolio, say so instead of guessing.
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// listHoldings renders the latest snapshot as the holdings table.
func listHoldings(cfg bridge.Config) Function {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "list_holdings",
			Description: `Lists every position of the latest snapshot: shares,
			prices, market value, unrealized P&L and dividends, in both the
			trade and the reporting currency. The columns are documented
			below.

			` + must(docs.GetTopic("history")),
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown table of the holdings.",
			},
		},
		Run: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			rows, err := folio.LoadHistory(cfg.HistoryPath())
			if err != nil {
				return errorResponse(id, "list_holdings", err)
			}
			latest := folio.LatestRows(rows)
			if len(latest) == 0 {
				return errorResponse(id, "list_holdings", fmt.Errorf("no snapshot recorded yet, run a refresh first"))
			}
			return &genai.FunctionResponse{
				ID:   id,
				Name: "list_holdings",
				Response: map[string]any{
					"output": renderer.Holdings(latest, cfg.BaseCurrency),
				},
			}
		},
	}
}

// getNews returns the stored headlines for one ticker, or all of them.
func getNews(cfg bridge.Config) Function {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "get_news",
			Description: `Returns the stored headlines and the thesis
			reference for a ticker in the portfolio. Without a ticker it
			returns every instrument's headlines from the latest refresh.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"ticker": {
						Type:        genai.TypeString,
						Description: "The ticker as held in the portfolio, e.g. RY.TO.",
					},
				},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "Markdown sections of headlines per ticker.",
			},
		},
		Run: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			news, err := folio.LoadNewsHistory(cfg.NewsPath())
			if err != nil {
				return errorResponse(id, "get_news", err)
			}
			latest := folio.LatestNewsRows(news)
			if ticker, ok := args["ticker"].(string); ok && ticker != "" {
				var filtered []folio.NewsRow
				for _, n := range latest {
					if strings.EqualFold(n.Ticker, ticker) {
						filtered = append(filtered, n)
					}
				}
				if len(filtered) == 0 {
					return errorResponse(id, "get_news", fmt.Errorf("no stored news for %q", ticker))
				}
				latest = filtered
			}
			if len(latest) == 0 {
				return errorResponse(id, "get_news", fmt.Errorf("no news recorded yet, run a refresh first"))
			}
			return &genai.FunctionResponse{
				ID:   id,
				Name: "get_news",
				Response: map[string]any{
					"output": renderer.News(latest),
				},
			}
		},
	}
}

// portfolioSummary reports the same headline figures the widget shows.
func portfolioSummary(cfg bridge.Config) Function {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "portfolio_summary",
			Description: `Totals of the latest snapshot in the reporting
			currency: market value, unrealized P&L, dividends received and
			the position count.`,
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "One line per figure.",
			},
		},
		Run: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			rows, err := folio.LoadHistory(cfg.HistoryPath())
			if err != nil {
				return errorResponse(id, "portfolio_summary", err)
			}
			latest := folio.LatestRows(rows)
			if len(latest) == 0 {
				return errorResponse(id, "portfolio_summary", fmt.Errorf("no snapshot recorded yet, run a refresh first"))
			}
			sum := bridge.Summarize(latest, cfg.BaseCurrency)
			out := fmt.Sprintf("date: %s\ntotal value: %s\nunrealized P&L: %s\ndividends received: %s\npositions: %d",
				sum.Date, sum.TotalValue, sum.UnrealizedPL, sum.TotalDividends, sum.PositionCount)
			return &genai.FunctionResponse{
				ID:       id,
				Name:     "portfolio_summary",
				Response: map[string]any{"output": out},
			}
		},
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
