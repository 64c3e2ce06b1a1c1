package view

import "html/template"

// placeholderFuncs lets the page template parse; Document.Render rebinds them.
var placeholderFuncs = template.FuncMap{
	"text":   func(string) string { return "" },
	"attr":   func(string, string) string { return "" },
	"hidden": func(string) bool { return false },
	"inner":  func(string) (template.HTML, error) { return "", nil },
	"json":   func(string) template.JS { return "" },
}

var pageTemplate = template.Must(template.New("page").Funcs(placeholderFuncs).Parse(pageHTML))

// pageHTML is the directory page. Every mount point in MountPoints appears
// here exactly once.
const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title id="page-title">{{text "page-title"}}</title>
  <meta name="description" id="page-description" content="{{attr "page-description" "content"}}">
  <meta name="keywords" id="page-keywords" content="{{attr "page-keywords" "content"}}">
  <meta property="og:title" id="og-title" content="{{attr "og-title" "content"}}">
  <meta property="og:description" id="og-description" content="{{attr "og-description" "content"}}">
  <meta property="og:url" id="og-url" content="{{attr "og-url" "content"}}">
  <meta property="og:type" content="website">
  <script type="application/ld+json" id="structured-data">{{json "structured-data"}}</script>
  <style>` + cssContent + `</style>
</head>
<body>
  <div id="loading" class="state"{{if hidden "loading"}} hidden{{end}}>Loading directory...</div>

  <div id="error" class="state"{{if hidden "error"}} hidden{{end}}>
    <h2>Something went wrong</h2>
    <p id="error-message">{{text "error-message"}}</p>
  </div>

  <main id="homepage"{{if hidden "homepage"}} hidden{{end}}>
    <h1>{{text "page-title"}}</h1>
    <p>{{attr "page-description" "content"}}</p>
  </main>

  <main id="content" data-key="{{attr "content" "data-key"}}" data-render="{{attr "content" "data-render"}}"{{if hidden "content"}} hidden{{end}}>
    <header class="directory-header">
      <h1 id="directory-title">{{text "directory-title"}}</h1>
      <p id="directory-description">{{text "directory-description"}}</p>
      <p id="directory-stats" class="stats">{{text "directory-stats"}}</p>
      <div id="directory-about" class="about">{{inner "directory-about"}}</div>
    </header>

    <form class="search" method="get" role="search">
      <input type="search" id="search" name="q" value="{{attr "search" "value"}}" placeholder="Search businesses, services, locations..." autocomplete="off">
    </form>
    <p id="results-count" class="results-count">{{text "results-count"}}</p>

    <section id="listings" class="listings" data-state="{{attr "listings" "data-state"}}">{{inner "listings"}}</section>

    <div id="no-results" class="no-results"{{if hidden "no-results"}} hidden{{end}}>
      <p>No businesses match your search.</p>
    </div>

    <footer>
      <p id="footer-updated">{{text "footer-updated"}}</p>
    </footer>
  </main>

  <script>` + jsContent + `</script>
</body>
</html>`

// cssContent is the inline stylesheet of the directory page.
const cssContent = `
[hidden] { display: none !important; }
body { font-family: system-ui, -apple-system, sans-serif; margin: 0 auto; max-width: 960px; padding: 1rem; color: #1f2933; }
.state { padding: 3rem 0; text-align: center; }
.directory-header h1 { margin-bottom: .25rem; }
.stats { color: #52606d; }
.search input { width: 100%; padding: .75rem; font-size: 1rem; border: 1px solid #cbd2d9; border-radius: 6px; box-sizing: border-box; }
.results-count { color: #52606d; font-size: .9rem; }
.listings { display: grid; gap: 1rem; }
.listings[data-state="dimmed"] { opacity: .5; }
.listing { border: 1px solid #e4e7eb; border-radius: 8px; padding: 1rem; }
.listing-header { display: flex; justify-content: space-between; align-items: baseline; }
.listing-name { margin: 0; }
.meta-item { margin: .25rem 0; }
.services { margin: .5rem 0; }
.service-tag { display: inline-block; background: #f0f4f8; border-radius: 999px; padding: .1rem .6rem; margin: 0 .25rem .25rem 0; font-size: .85rem; }
.listing-actions .btn { display: inline-block; margin-right: .5rem; padding: .4rem .8rem; border-radius: 6px; text-decoration: none; }
.btn-primary { background: #2563eb; color: #fff; }
.btn-secondary { background: #e4e7eb; color: #1f2933; }
.no-results { text-align: center; color: #52606d; }
`

// jsContent streams search input to the live search socket and applies the
// visible set it returns. The page works without it through the search form.
const jsContent = `
(function () {
  var content = document.getElementById('content');
  var input = document.getElementById('search');
  if (!content || content.hidden || !input || !window.WebSocket) return;

  var render = content.getAttribute('data-render');
  if (!render) return;
  var scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
  var ws = new WebSocket(scheme + location.host + '/ws/search?render=' + encodeURIComponent(render));

  ws.onmessage = function (ev) {
    var msg = JSON.parse(ev.data);
    if (msg.type !== 'results') return;
    var visible = {};
    (msg.visible || []).forEach(function (i) { visible[i] = true; });
    document.querySelectorAll('.listing').forEach(function (card) {
      card.hidden = !visible[card.getAttribute('data-index')];
    });
    document.getElementById('results-count').textContent = msg.count_text;
    document.getElementById('no-results').hidden = !msg.no_results;
    document.getElementById('listings').dataset.state = msg.no_results ? 'dimmed' : '';
  };

  input.form.addEventListener('submit', function (ev) {
    if (ws.readyState === WebSocket.OPEN) ev.preventDefault();
  });
  input.addEventListener('input', function () {
    if (ws.readyState === WebSocket.OPEN) {
      ws.send(JSON.stringify({ type: 'input', term: input.value }));
    }
  });
})();
`
