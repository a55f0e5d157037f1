// Copyright (c) 2022-2024, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

package web_site

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"sync"

	"github.com/simonlingoogle/go-simplelogger"
)

//go:embed templates static
var assets embed.FS

var httpServer *http.Server = nil
var canServe bool = true
var httpServerMutex sync.Mutex
var Started = make(chan struct{})

// Asset returns the content of an embedded asset, e.g. "static/dashboard.js".
func Asset(name string) ([]byte, error) {
	return assets.ReadFile(name)
}

// AssetNames returns the names of all embedded assets.
func AssetNames() []string {
	var names []string
	_ = fs.WalkDir(assets, ".", func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			names = append(names, path)
		}
		return err
	})
	return names
}

// NewHandler returns the dashboard handler. Requests to /api/ and /metrics go to api.
func NewHandler(api http.Handler, title string) (http.Handler, error) {
	templates, err := template.ParseFS(assets, "templates/*.html")
	if err != nil {
		return nil, err
	}
	static, err := fs.Sub(assets, "static")
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	mux.Handle("/api/", api)
	mux.Handle("/metrics", api)
	mux.HandleFunc("/", func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/" {
			http.NotFound(writer, request)
			return
		}
		err := templates.ExecuteTemplate(writer, "index.html", map[string]interface{}{
			"title": title,
		})
		if err != nil {
			simplelogger.Errorf("render dashboard failed: %v", err)
			writer.WriteHeader(501)
		}
	})
	return mux, nil
}

// Serve serves handler on listenAddr until StopServe is called.
func Serve(listenAddr string, handler http.Handler) error {
	defer simplelogger.Debugf("webserver exit.")

	httpServerMutex.Lock()
	if !canServe {
		httpServer = nil
		httpServerMutex.Unlock()
		close(Started)
		return http.ErrServerClosed
	}
	httpServer = &http.Server{Addr: listenAddr, Handler: handler}
	simplelogger.Infof("otlb webserver now serving on %s ...", listenAddr)
	defer simplelogger.Debugf("webserver: httpServer.ListenAndServe() done")
	httpServerMutex.Unlock()
	close(Started)
	return httpServer.ListenAndServe()
}

func StopServe() {
	simplelogger.Debugf("requesting webserver to exit ...")
	httpServerMutex.Lock()
	if httpServer != nil {
		_ = httpServer.Close()
	}
	canServe = false // prevent serving again in same execution.
	httpServerMutex.Unlock()
}
