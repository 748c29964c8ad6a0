package api

import (
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/creatorstack/socialgate/internal/connect"
	"github.com/creatorstack/socialgate/internal/provider"
	"github.com/creatorstack/socialgate/internal/session"
)

// Callback handles the provider redirect after user authorization. It
// completes the exchange exactly once per attempt and responds with an
// HTML page that signals the opener: popups post a typed message to the
// frontend origin and self-close, full-page flows redirect to the
// frontend root with a query flag.
func (h *Handler) Callback(c *gin.Context) {
	name, nameErr := provider.ParseName(c.Param("provider"))

	attemptID := uuid.Nil
	uid := "default"
	if st, err := provider.DecodeState(c.Query("state")); err == nil {
		attemptID = st.AttemptID
		if st.UserID != "" {
			uid = st.UserID
		}
		// The state payload is authoritative for the provider; the path
		// segment only picks the route.
		name = st.Provider
	} else if nameErr != nil {
		h.renderCallback(c, name, nil, "invalid callback state")
		return
	}

	// Provider-reported denial is terminal; the exchange path must not run.
	if errParam := c.Query("error"); errParam != "" {
		msg := errParam
		if desc := c.Query("error_description"); desc != "" {
			msg = desc
		}
		h.tracker.Fail(attemptID, msg)
		h.renderCallback(c, name, nil, msg)
		return
	}

	code := c.Query("code")
	if code == "" {
		h.tracker.Fail(attemptID, "missing authorization code")
		h.renderCallback(c, name, nil, "missing authorization code")
		return
	}

	// Exactly-once guard: a re-delivered callback for a finished attempt
	// re-renders the outcome without exchanging again.
	if attemptID != uuid.Nil {
		if attempt, ok := h.tracker.Get(attemptID); ok {
			if attempt.Status.Terminal() {
				if attempt.Status == connect.StatusConnected {
					sess, _ := h.sessions.Get(c.Request.Context(), name, uid)
					h.renderCallback(c, name, sess, "")
				} else {
					h.renderCallback(c, name, nil, attempt.Error)
				}
				return
			}
			if !h.tracker.BeginExchange(attemptID) {
				h.renderCallback(c, name, nil, "authorization already in progress")
				return
			}
		}
	}

	var (
		sess *session.Session
		err  error
	)
	switch name {
	case provider.TikTok, provider.InstagramGraph:
		sess, err = h.completeGatewayLogin(c.Request.Context(), name, code, uid)
	default:
		sess, err = h.completeDirectLogin(c.Request.Context(), name, code, uid)
	}
	if err != nil {
		h.tracker.Fail(attemptID, err.Error())
		h.renderCallback(c, name, nil, err.Error())
		return
	}

	h.tracker.Complete(attemptID)
	h.renderCallback(c, name, sess, "")
}

type callbackPage struct {
	Provider    string
	Success     bool
	Message     string
	MessageType string
	Origin      string
	RedirectURL string
	Username    string
	UserID      string
}

func (h *Handler) renderCallback(c *gin.Context, name provider.Name, sess *session.Session, errMsg string) {
	page := callbackPage{
		Provider: string(name),
		Success:  errMsg == "",
		Message:  errMsg,
		Origin:   h.cfg.Frontend.BaseURL,
	}

	suffix := "_OAUTH_ERROR"
	if page.Success {
		suffix = "_OAUTH_SUCCESS"
	}
	page.MessageType = strings.ToUpper(string(name)) + suffix

	if page.Success {
		page.RedirectURL = h.cfg.Frontend.BaseURL + "/?connected=" + url.QueryEscape(string(name))
		if sess != nil {
			page.Username = sess.Username
			page.UserID = sess.UserID
		}
	} else {
		page.RedirectURL = h.cfg.Frontend.BaseURL + "/?connect_error=" +
			url.QueryEscape(errMsg) + "&provider=" + url.QueryEscape(string(name))
	}

	status := http.StatusOK
	if !page.Success {
		status = http.StatusBadRequest
	}
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := callbackTemplate.Execute(c.Writer, page); err != nil {
		h.log.Error("rendering callback page", zap.Error(err))
	}
}

var callbackTemplate = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head>
  <title>{{if .Success}}Connection Successful{{else}}Connection Failed{{end}}</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
           display: flex; align-items: center; justify-content: center; height: 100vh;
           margin: 0; background: #f5f5f5; }
    .container { text-align: center; background: white; padding: 2rem;
                 border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
    h1.ok { color: #1DB954; margin: 0 0 1rem 0; }
    h1.err { color: #d33; margin: 0 0 1rem 0; }
    p { color: #666; margin: 0 0 1rem 0; }
    a { color: #0070f3; }
  </style>
</head>
<body>
  <div class="container">
    {{if .Success}}
    <h1 class="ok">&#10003; Account Connected</h1>
    <p>{{if .Username}}Connected as {{.Username}}. {{end}}This window will close shortly.</p>
    {{else}}
    <h1 class="err">&#10007; Connection Failed</h1>
    <p>{{.Message}}</p>
    {{end}}
    <a href="{{.RedirectURL}}">Return to app</a>
  </div>
  <script>
    (function () {
      if (window.opener) {
        try {
          window.opener.postMessage({
            type: "{{.MessageType}}",
            {{if .Success}}data: { provider: "{{.Provider}}", username: "{{.Username}}", user_id: "{{.UserID}}" }{{else}}error: "{{.Message}}"{{end}}
          }, "{{.Origin}}");
        } catch (e) { /* opener gone or cross-origin */ }
        setTimeout(function () { window.close(); }, 1800);
      } else {
        window.location.replace("{{.RedirectURL}}");
      }
    })();
  </script>
</body>
</html>
`))
