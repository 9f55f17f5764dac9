package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"text/template"
)

// CacheName is the service worker cache holding the offline app shell.
const CacheName = "app-shell-v1"

// OfflineAssets are pre-cached on install. Pages go to the network first.
var OfflineAssets = []string{
	"/",
	"/styles.css",
	"/app.js",
	"/manifest.webmanifest",
	"/icons/icon.svg",
}

var swTmpl = template.Must(template.New("sw.js").Parse(`const CACHE_NAME = {{.Cache}};
const urlsToCache = {{.Assets}};

self.addEventListener('install', e => {
  e.waitUntil(caches.open(CACHE_NAME).then(cache => cache.addAll(urlsToCache)));
});

self.addEventListener('activate', e => {
  e.waitUntil(caches.keys().then(keys =>
    Promise.all(keys.filter(k => k !== CACHE_NAME).map(k => caches.delete(k)))));
});

self.addEventListener('fetch', e => {
  if (e.request.method !== 'GET') {
    return;
  }
  // pages carry per-session state, so only fall back to the cached shell offline
  if (e.request.mode === 'navigate') {
    e.respondWith(fetch(e.request).catch(() => caches.match('/')));
    return;
  }
  e.respondWith(
    caches.match(e.request).then(resp => resp || fetch(e.request))
  );
});
`))

func serviceWorker() ([]byte, error) {
	cache, err := json.Marshal(CacheName)
	if err != nil {
		return nil, err
	}
	assets, err := json.Marshal(OfflineAssets)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = swTmpl.Execute(&buf, struct{ Cache, Assets string }{string(cache), string(assets)})
	if err != nil {
		return nil, fmt.Errorf("render service worker: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Server) handleServiceWorker(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(s.swJS)
}
