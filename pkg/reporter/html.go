package reporter

import (
	"fmt"
	"html/template"
	"io"
	"strings"
)

const htmlTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>VM Rightsizing Report - {{.Region}}</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background: #f5f7fa;
            color: #333;
            padding: 20px;
            line-height: 1.6;
        }
        .container {
            max-width: 1400px;
            margin: 0 auto;
            background: white;
            border-radius: 8px;
            box-shadow: 0 2px 8px rgba(0, 0, 0, 0.1);
            overflow: hidden;
        }
        .header {
            background: linear-gradient(135deg, #0078d4 0%, #004e8c 100%);
            color: white;
            padding: 40px;
        }
        .header h1 { font-size: 2.4em; margin-bottom: 10px; }
        .summary {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(240px, 1fr));
            gap: 20px;
            padding: 40px;
        }
        .summary-card {
            padding: 25px;
            border-radius: 10px;
            border: 2px solid #e8eaed;
        }
        .summary-card h3 {
            color: #5f6368;
            font-size: 0.85em;
            text-transform: uppercase;
            letter-spacing: 1.5px;
            margin-bottom: 10px;
        }
        .summary-card .value { font-size: 2.6em; font-weight: 700; line-height: 1; }
        .summary-card.savings { border-left: 6px solid #34a853; }
        .summary-card.savings .value { color: #34a853; }
        .summary-card.resources { border-left: 6px solid #0078d4; }
        .summary-card.resizes { border-left: 6px solid #fbbc04; }
        .section { padding: 40px; }
        .section h2 { font-size: 1.8em; margin-bottom: 25px; color: #202124; }
        table { width: 100%; border-collapse: collapse; }
        th {
            background: #0078d4;
            color: white;
            padding: 14px 12px;
            text-align: left;
            font-size: 0.9em;
            text-transform: uppercase;
        }
        td { padding: 14px 12px; border-bottom: 1px solid #f0f2f4; }
        .badge {
            padding: 5px 12px;
            border-radius: 6px;
            font-size: 0.75em;
            font-weight: 700;
            text-transform: uppercase;
            display: inline-block;
        }
        .outcome-resize { background: #e6f4ea; color: #1e8e3e; }
        .outcome-no_reduction { background: #f1f3f4; color: #5f6368; }
        .outcome-increase { background: #fce8e6; color: #d93025; }
        .outcome-rejected { background: #fef7e0; color: #f9ab00; }
        .footer { background: #202124; color: #9aa0a6; padding: 30px; text-align: center; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>VM Rightsizing Report</h1>
            <p><strong>Region:</strong> {{.Region}} | <strong>Source:</strong> {{.Source}}</p>
            <p><strong>Generated:</strong> {{.GeneratedAt.Format "January 2, 2006 15:04:05 MST"}}</p>
        </div>

        <div class="summary">
            <div class="summary-card savings">
                <h3>Total Annual Savings</h3>
                <div class="value">${{printf "%.2f" .TotalSavings}}</div>
            </div>
            <div class="summary-card resources">
                <h3>Resources Evaluated</h3>
                <div class="value">{{.ResourceCount}}</div>
            </div>
            <div class="summary-card resizes">
                <h3>Resize Opportunities</h3>
                <div class="value">{{.ResizeCount}}</div>
            </div>
        </div>

        {{if .SubscriptionStats}}
        <div class="section">
            <h2>By Subscription</h2>
            <table>
                <thead>
                    <tr><th>Subscription</th><th>Resources</th><th>Resizes</th><th>Annual Savings</th></tr>
                </thead>
                <tbody>
                    {{range .SubscriptionStats}}
                    <tr>
                        <td>{{.SubscriptionID}}</td>
                        <td>{{.Resources}}</td>
                        <td>{{.Resizes}}</td>
                        <td>${{printf "%.2f" .TotalSavings}}</td>
                    </tr>
                    {{end}}
                </tbody>
            </table>
        </div>
        {{end}}

        <div class="section">
            <h2>Resources</h2>
            <table>
                <thead>
                    <tr>
                        <th>VM</th>
                        <th>Current SKU</th>
                        <th>Recommended SKU</th>
                        <th>Outcome</th>
                        <th>Savings/Year</th>
                        <th>Reason</th>
                    </tr>
                </thead>
                <tbody>
                    {{range .Rows}}
                    <tr>
                        <td title="{{.ResourceID}}"><strong>{{.VMName}}</strong></td>
                        <td>{{.CurrentSKU}}</td>
                        <td>{{.RecommendedSKU}}</td>
                        <td><span class="badge outcome-{{.Outcome | lower}}">{{.Outcome}}</span></td>
                        <td>${{printf "%.2f" .AnnualSavings}}</td>
                        <td>{{.Reason}}</td>
                    </tr>
                    {{end}}
                </tbody>
            </table>
        </div>

        <div class="footer">
            <p>Generated by <strong>vm-rightsizer</strong></p>
        </div>
    </div>
</body>
</html>
`

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"lower": func(s interface{}) string {
		return strings.ToLower(fmt.Sprintf("%v", s))
	},
}).Parse(htmlTemplate))

// GenerateHTML creates an HTML report
func GenerateHTML(report *Report, writer io.Writer) error {
	if err := reportTemplate.Execute(writer, report); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

// Write renders the report in the reporter's format
func (r *Reporter) Write(report *Report, writer io.Writer) error {
	switch r.format {
	case FormatHTML:
		return GenerateHTML(report, writer)
	case FormatCSV:
		return GenerateCSV(report, writer)
	default:
		return fmt.Errorf("unsupported report format: %s", r.format)
	}
}
