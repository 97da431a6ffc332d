package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("RequestID", func() {
	When("the client sends no X-Request-ID", func() {
		It("generates one and echoes it back", func() {
			var seen string
			handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = RequestIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			Expect(seen).To(HaveLen(32))
			Expect(rec.Header().Get("X-Request-ID")).To(Equal(seen))
		})
	})

	When("the client sends an X-Request-ID", func() {
		It("reuses it", func() {
			var seen string
			handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = RequestIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Request-ID", "client-chosen-id")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			Expect(seen).To(Equal("client-chosen-id"))
			Expect(rec.Header().Get("X-Request-ID")).To(Equal("client-chosen-id"))
		})
	})
})

var _ = Describe("Recover", func() {
	It("turns a panic into a 500 JSON error", func() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		handler := Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))
		Expect(rec.Body.String()).To(ContainSubstring("Internal server error."))
	})

	It("leaves normal responses alone", func() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		handler := Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(rec.Code).To(Equal(http.StatusTeapot))
	})
})
