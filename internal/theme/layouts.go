package theme

// Built-in fallback layouts, used when no theme is configured. They render a
// plain, unstyled site that exercises the same template data as a real theme.

const builtinBase = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ block "title" . }}{{ .Site.Title }}{{ end }}</title>
{{- with .Site.Description }}
  <meta name="description" content="{{ . }}">
{{- end }}
</head>
<body>
<header>
  <h1><a href="{{ .Site.BaseURL }}">{{ .Site.Title }}</a></h1>
  <nav><a href="{{ .Site.BaseURL }}tags/">tags</a></nav>
</header>
<main>
{{ block "main" . }}{{ end }}
</main>
<footer>
{{- with .Site.Author }}
  <p>&copy; {{ . }}</p>
{{- end }}
</footer>
</body>
</html>
`

var builtinLayouts = map[PageKind]string{
	KindHome:      builtinHome,
	KindPost:      builtinPost,
	KindTag:       builtinTag,
	KindTagsIndex: builtinTagsIndex,
}

const builtinHome = `{{ define "main" }}
<section class="post-list">
{{- range .Posts }}
  <article>
    <h2><a href="{{ .Permalink }}">{{ .Title }}</a></h2>
    <time datetime="{{ .Date.Format "2006-01-02" }}">{{ .Date.Format "January 2, 2006" }}</time>
{{- with .Description }}
    <p>{{ . }}</p>
{{- end }}
  </article>
{{- else }}
  <p>Nothing here yet.</p>
{{- end }}
</section>
{{- with .Pagination }}
<nav class="pagination">
{{- if .PrevURL }}
  <a rel="prev" href="{{ .PrevURL }}">newer</a>
{{- end }}
  <span>page {{ .Current }} of {{ .Total }}</span>
{{- if .NextURL }}
  <a rel="next" href="{{ .NextURL }}">older</a>
{{- end }}
</nav>
{{- end }}
{{ end }}`

const builtinPost = `{{ define "title" }}{{ .Post.Title }} - {{ .Site.Title }}{{ end }}
{{ define "main" }}
<article>
  <header>
    <h1>{{ .Post.Title }}</h1>
    <time datetime="{{ .Post.Date.Format "2006-01-02" }}">{{ .Post.Date.Format "January 2, 2006" }}</time>
  </header>
  <div class="content">
{{ .Post.Content }}
  </div>
{{- if .Post.Tags }}
  <footer class="tags">
{{- range .Post.Tags }}
    <a href="{{ $.Site.BaseURL }}tags/{{ . }}/">{{ . }}</a>
{{- end }}
  </footer>
{{- end }}
</article>
{{ end }}`

const builtinTag = `{{ define "title" }}{{ .Tag }} - {{ .Site.Title }}{{ end }}
{{ define "main" }}
<h1>Posts tagged &ldquo;{{ .Tag }}&rdquo;</h1>
<section class="post-list">
{{- range .Posts }}
  <article>
    <h2><a href="{{ .Permalink }}">{{ .Title }}</a></h2>
    <time datetime="{{ .Date.Format "2006-01-02" }}">{{ .Date.Format "January 2, 2006" }}</time>
  </article>
{{- end }}
</section>
{{ end }}`

const builtinTagsIndex = `{{ define "title" }}Tags - {{ .Site.Title }}{{ end }}
{{ define "main" }}
<h1>Tags</h1>
<ul class="tag-list">
{{- range .Tags }}
  <li><a href="{{ .URL }}">{{ .Name }}</a> ({{ .Count }})</li>
{{- else }}
  <li>No tags.</li>
{{- end }}
</ul>
{{ end }}`
