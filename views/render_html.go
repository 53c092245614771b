package views

import (
	"html/template"
	"io"
)

var pageTemplate = template.Must(template.New("page").Parse(pageTpl))

// RenderHTML writes the page as a complete HTML document.
func RenderHTML(w io.Writer, page Page) error {
	return pageTemplate.Execute(w, page)
}

const pageTpl = `<!doctype html>
<html lang="en">
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width, initial-scale=1" />
<title>{{.Heading}}</title>
<style>
body{font-family:system-ui,-apple-system,Segoe UI,Roboto;max-width:1100px;margin:0 auto;padding:1rem}
.rows form{margin:0}
.rows button{display:block;width:100%;text-align:left;background:none;border:0;padding:6px;border-radius:6px;cursor:pointer;font:inherit}
.rows button:hover{background:#f6f6f6}
.details{border:1px solid #ddd;border-radius:8px;padding:12px;margin-top:1rem}
.details video{max-width:100%}
.muted{color:#666}
.error{color:#a00}
</style>
<h1>{{.Heading}}</h1>
<div>
  <h3>{{.SubHeading}}</h3>
  {{- if .Loading}}
  <p class="muted" id="status">Loading videos…</p>
  {{- else if .Failed}}
  <div class="error" id="status" role="alert">
    <p>Could not load videos: {{.Failure}}</p>
    <form method="post" action="/retry"><button type="submit">Retry</button></form>
  </div>
  {{- else}}
  <div class="rows" id="list">
  {{- range .Rows}}
    <form method="post" action="/select/{{.Key}}" data-key="{{.Key}}"><button type="submit">{{.Label}}</button></form>
  {{- end}}
  </div>
  {{- if .Empty}}
  <p class="muted" id="status">No videos available.</p>
  {{- end}}
  {{- end}}
</div>
{{- with .Detail}}
<div class="details" id="details">
  <h3>{{.Title}}</h3>
  <p>{{.Speaker}}</p>
  <video src="{{.MediaURL}}" controls></video>
  <form method="post" action="/deselect"><button type="submit">Close</button></form>
</div>
{{- end}}
<script>
(function(){
  var version = {{.Version}};
  if (!window.EventSource) return;
  var es = new EventSource('/events');
  es.addEventListener('change', function(e){
    if (Number(e.data) > version) { es.close(); window.location.reload(); }
  });
})();
</script>
`
