package graph

import (
	"html/template"
	"log/slog"
	"net/http"
)

var playgroundTmpl = template.Must(template.New("playground").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="user-scalable=no, initial-scale=1.0, minimum-scale=1.0, maximum-scale=1.0, minimal-ui">
  <title>PhotoShare Playground</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/graphql-playground-react/build/static/css/index.css" />
  <link rel="shortcut icon" href="https://cdn.jsdelivr.net/npm/graphql-playground-react/build/favicon.png" />
  <script src="https://cdn.jsdelivr.net/npm/graphql-playground-react/build/static/js/middleware.js"></script>
</head>
<body>
  <div id="root"></div>
  <script>
    window.addEventListener('load', function () {
      GraphQLPlayground.init(document.getElementById('root'), {
        endpoint: {{.Endpoint}},
        subscriptionEndpoint: {{.SubscriptionEndpoint}}
      })
    })
  </script>
</body>
</html>
`))

// PlaygroundHandler serves GraphQL Playground pointed at endpoint.
func PlaygroundHandler(endpoint, subscriptionEndpoint string, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err := playgroundTmpl.Execute(w, struct {
			Endpoint             string
			SubscriptionEndpoint string
		}{endpoint, subscriptionEndpoint})
		if err != nil && logger != nil {
			logger.ErrorContext(r.Context(), "Failed to render playground", slog.Any("error", err))
		}
	}
}
