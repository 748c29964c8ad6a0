// testclient is a minimal local frontend for testing the connect flow
// end-to-end. Point FRONTEND_URL at it, open the printed link, and it
// catches either the popup postMessage or the redirect fallback.
//
// Usage:
//
//	go run ./cmd/testclient
package main

import (
	"fmt"
	"log"
	"net/http"
)

func main() {
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if p := r.URL.Query().Get("connected"); p != "" {
			log.Printf("connect complete — provider: %s", p)
		}
		if e := r.URL.Query().Get("connect_error"); e != "" {
			log.Printf("connect failed — provider: %s error: %s", r.URL.Query().Get("provider"), e)
		}

		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body>
<h2>socialgate testclient</h2>
<p>Open a connect popup:</p>
<pre>curl "http://localhost:8080/api/connect/youtube/start?user_id=tester" | jq .</pre>
<p>then open <code>auth_url</code> in a new window.</p>
<script>
window.addEventListener("message", function (ev) {
  if (ev.data && ev.data.type) {
    console.log("popup message:", ev.data.type);
    document.body.insertAdjacentHTML("beforeend", "<p><strong>" + ev.data.type + "</strong></p>");
  }
});
</script>
</body></html>`)
	})

	addr := ":3000"
	log.Printf("testclient listening on %s — waiting for connect redirect...", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatal(err)
	}
}
