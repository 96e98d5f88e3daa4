package report

// DashboardTemplate is the HTML template for the ticker dashboard.
const DashboardTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #ffffff;
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #2563eb;
    --green: #16a34a;
    --red: #dc2626;
    --section-bg: #f8fafc;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
    line-height: 1.6;
    max-width: 1200px;
    margin: 0 auto;
    padding: 20px;
  }
  h1 { font-size: 1.4rem; margin-bottom: 4px; }
  h2 { font-size: 1.1rem; margin: 20px 0 10px; padding-bottom: 6px; border-bottom: 2px solid var(--accent); }
  .muted { color: var(--muted); font-size: 0.85rem; }

  .header {
    display: flex;
    justify-content: space-between;
    align-items: flex-start;
    border-bottom: 3px solid var(--accent);
    padding-bottom: 12px;
    margin-bottom: 16px;
  }
  .ticker-badge {
    display: inline-block;
    background: var(--accent);
    color: white;
    padding: 2px 12px;
    border-radius: 4px;
    font-weight: 700;
    margin-right: 8px;
  }
  .positive { color: var(--green); }
  .negative { color: var(--red); }
  .neutral { color: var(--muted); }

  .layout { display: grid; grid-template-columns: 1fr 1fr; gap: 24px; }
  @media (max-width: 900px) { .layout { grid-template-columns: 1fr; } }

  .chart { margin-bottom: 12px; }
  .chart svg { width: 100%; height: auto; }
  .correlation { background: var(--section-bg); padding: 10px 12px; border-radius: 6px; font-weight: 600; }

  .card { border-bottom: 1px solid var(--border); padding: 10px 0; }
  .card a { color: var(--text); font-weight: 600; text-decoration: none; }
  .card a:hover { text-decoration: underline; }
  .card blockquote { color: var(--muted); border-left: 3px solid var(--border); padding-left: 8px; margin: 4px 0; font-size: 0.9rem; }
  .caption { font-size: 0.8rem; color: var(--muted); }

  .footer { margin-top: 24px; font-size: 0.75rem; color: var(--muted); border-top: 1px solid var(--border); padding-top: 8px; }
</style>
</head>
<body>

<div class="header">
  <div>
    <h1><span class="ticker-badge">{{.Ticker}}</span>{{.CompanyName}}</h1>
    <p class="muted">Last {{.Days}} days · Generated {{.GeneratedAt}}</p>
  </div>
  {{if .LastClose}}
  <div style="text-align:right">
    <div style="font-size:1.3rem;font-weight:700">{{.LastClose}}</div>
    {{if .PeriodMove}}<div class="{{.MoveClass}}">{{.PeriodMove}}</div>{{end}}
  </div>
  {{end}}
</div>

<div class="layout">
  <div>
    <h2>Price</h2>
    <div class="chart">{{.PriceChart}}</div>
    <h2>Sentiment</h2>
    <div class="chart">{{.SentimentChart}}</div>
    <h2>Price + Sentiment</h2>
    <div class="chart">{{.OverlayChart}}</div>
    <p class="correlation">{{.Correlation}}</p>
  </div>

  <div>
    <h2>Recent Headlines{{if .Source}} <span class="muted">({{.Source}})</span>{{end}}</h2>
    {{range .Headlines}}
    <div class="card">
      <a href="{{.URL}}" target="_blank" rel="noopener">{{.Title}}</a>
      <div class="caption">Sentiment: <span class="{{.LabelClass}}">{{.Label}}</span> ({{.Score}}) | Source: {{.Source}} | Date: {{.Date}}</div>
    </div>
    {{else}}
    <p class="muted">No recent headlines found.</p>
    {{end}}

    <h2>Recent Reddit Posts</h2>
    {{range .Posts}}
    <div class="card">
      <a href="{{.URL}}" target="_blank" rel="noopener">{{.Title}}</a>
      {{if .Preview}}<blockquote>{{.Preview}}</blockquote>{{end}}
      <div class="caption">Sentiment: <span class="{{.LabelClass}}">{{.Label}}</span> ({{.Score}}) | Subreddit: {{.Subreddit}} | Upvotes: {{.Upvotes}} | Date: {{.Date}}</div>
    </div>
    {{else}}
    <p class="muted">No recent Reddit posts found.</p>
    {{end}}
  </div>
</div>

<div class="footer">
  <p>Sentiment scores are lexicon-based and for information only. Not financial advice.</p>
</div>

</body>
</html>`
