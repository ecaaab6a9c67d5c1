package web

import "html/template"

var pageTemplates = template.Must(template.New("web").Parse(`
{{define "page"}}<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Board {{.BoardID}}</title>
<script type="module" src="{{.DatastarURL}}"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 0; background: #f4f4f6; color: #1d1d1f; }
header { display: flex; gap: .75rem; align-items: center; padding: .75rem 1rem; background: #fff; border-bottom: 1px solid #ddd; }
header form { display: flex; gap: .5rem; }
#flash.error { color: #b00020; }
#flash.ok { color: #2e7d32; }
.board { display: flex; gap: 1rem; padding: 1rem; align-items: flex-start; overflow-x: auto; }
.column { background: #e9e9ee; border-radius: 6px; padding: .5rem; min-width: 16rem; max-width: 20rem; }
.column h2 { font-size: 1rem; margin: .25rem .25rem .5rem; }
.count { color: #777; font-weight: normal; }
.card { background: #fff; border-radius: 4px; padding: .5rem; margin-bottom: .5rem; box-shadow: 0 1px 2px rgba(0,0,0,.15); cursor: pointer; }
.card[draggable=true] { cursor: grab; }
.card h3 { font-size: .95rem; margin: 0 0 .25rem; }
.meta { font-size: .8rem; color: #666; margin: 0; display: flex; flex-wrap: wrap; gap: .35rem; }
.label { border-radius: 3px; padding: 0 .3rem; color: #fff; background: #888; }
.label-red { background: #d32f2f; } .label-green { background: #388e3c; } .label-yellow { background: #f9a825; color: #222; } .label-blue { background: #1976d2; }
.due-expired { color: #b00020; } .due-soon { color: #e65100; }
.empty, .muted { color: #888; font-size: .85rem; }
#detail:not(:empty) { position: fixed; right: 0; top: 0; bottom: 0; width: min(32rem, 100%); overflow-y: auto; background: #fff; border-left: 1px solid #ddd; padding: 1rem; }
#detail dl { display: grid; grid-template-columns: max-content 1fr; gap: .25rem 1rem; }
#detail table { border-collapse: collapse; width: 100%; font-size: .85rem; }
#detail td, #detail th { text-align: left; padding: .2rem .4rem; border-bottom: 1px solid #eee; }
</style>
</head>
<body data-signals='{"dragging": 0, "over": ""}'>
<header>
<form method="get" action="/">
<input type="search" name="q" value="{{.Query}}" placeholder="Search title or description">
<select name="label"><option value="">Any label</option>{{range .Labels}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Name}}</option>{{end}}</select>
<select name="owner"><option value="">Anyone</option>{{range .Owners}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Name}}</option>{{end}}</select>
<button type="submit">Filter</button>
</form>
{{if not .ReadOnly}}<button data-on-click="@post('/refresh')">Reload</button>{{end}}
<span id="flash"></span>
</header>
<div data-init="@get('{{.EventsURL}}')"></div>
{{template "board" .Board}}
<aside id="detail"></aside>
</body>
</html>
{{end}}

{{define "board"}}<main id="board" class="board">
{{if not .Columns}}<p class="muted">No lists on this board.</p>{{end}}
{{range .Columns}}<section class="column" id="list-{{.ID}}"{{if not (or $.ReadOnly .Placeholder)}} data-on-dragover__prevent="$over = {{.Target}}" data-on-drop__prevent="@post('/drop')"{{end}}>
<h2>{{.Name}} <span class="count">{{len .Cards}}</span></h2>
{{range .Cards}}<article class="card" id="card-{{.ID}}"{{if not $.ReadOnly}} draggable="true" data-on-dragstart="$dragging = {{.ID}}; $over = ''" data-on-dragover__prevent__stop="$over = {{.Target}}" data-on-drop__prevent__stop="@post('/drop')"{{end}} data-on-click="@get('/cards/{{.ID}}')">
<h3>{{.Title}}</h3>
<p class="meta"><span>#{{.ID}}</span>{{if .Hours}}<span>{{.Hours}}</span>{{end}}{{range .Labels}}<span class="label label-{{.Color}}">{{.Name}}</span>{{end}}{{if .Due}}<span class="due due-{{.DueStatus}}">due {{.Due}}</span>{{end}}{{if .Subtasks}}<span>{{.Subtasks}}</span>{{end}}</p>
</article>
{{end}}{{if not .Cards}}<p class="empty">(empty)</p>{{end}}
</section>
{{end}}<p class="muted">{{.Matched}}/{{.Total}} cards</p>
</main>{{end}}

{{define "detail"}}<aside id="detail">
<header><h2>#{{.ID}} {{.Title}}</h2><button data-on-click="document.getElementById('detail').replaceChildren()">Close</button></header>
<dl>
<dt>List</dt><dd>{{.List}}</dd>
<dt>Responsible</dt><dd>{{.Responsible}}</dd>
{{if .Labels}}<dt>Labels</dt><dd>{{range .Labels}}<span class="label label-{{.Color}}">{{.Name}}</span> {{end}}</dd>{{end}}
{{if .Due}}<dt>Due</dt><dd class="due-{{.DueStatus}}">{{.Due}}</dd>{{end}}
{{if .Hours}}<dt>Hours</dt><dd>{{.Hours}}</dd>{{end}}
{{if .Subtasks}}<dt>Subtasks</dt><dd>{{.Subtasks}}</dd>{{end}}
{{if .Created}}<dt>Created</dt><dd>{{.Created}}</dd>{{end}}
{{if .Updated}}<dt>Updated</dt><dd>{{.Updated}}</dd>{{end}}
</dl>
<section class="description">{{with .Description}}{{if .HTML}}{{.HTML}}{{else}}<p class="muted">No description.</p>{{end}}{{if .Checklist}}<p class="muted">{{.Checklist}} checklist items done</p>{{end}}{{if .Truncated}}<p class="muted">Description shortened; run <code>kanban cards show {{$.ID}}</code> for the full text.</p>{{end}}{{end}}</section>
<h3>Worklog</h3>
{{if .WorklogErr}}<p class="error">{{.WorklogErr}}</p>{{else if .Worklogs}}<table>
<tr><th>Date</th><th>Hours</th><th>Note</th></tr>
{{range .Worklogs}}<tr><td>{{.Date}}</td><td>{{.Hours}}</td><td>{{.Note}}</td></tr>
{{end}}</table>
<p class="muted">{{.WorklogTotal}} total</p>{{else}}<p class="muted">No time logged.</p>{{end}}
{{if not .ReadOnly}}<button data-on-click="confirm('Delete card #{{.ID}}?') && @delete('/cards/{{.ID}}')">Delete</button>{{end}}
</aside>{{end}}

{{define "flash"}}<span id="flash" class="{{if .Err}}error{{else}}ok{{end}}">{{.Text}}</span>{{end}}
`))
