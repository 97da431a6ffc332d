package handler

import (
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("OpenAPI", func() {
	It("serves the YAML document", func() {
		rec := httptest.NewRecorder()
		OpenAPI()(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Content-Type")).To(Equal("application/x-yaml"))
		Expect(rec.Body.String()).To(ContainSubstring("openapi:"))
		Expect(rec.Body.String()).To(ContainSubstring("/restaurantes/{city}"))
	})
})

var _ = Describe("SwaggerUI", func() {
	It("serves an HTML page pointing at the spec", func() {
		rec := httptest.NewRecorder()
		SwaggerUI()(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Content-Type")).To(HavePrefix("text/html"))
		Expect(rec.Body.String()).To(ContainSubstring(`url: "/openapi.yaml"`))
	})
})

var _ = Describe("RestaurantsByCity", func() {
	When("the catalog has matches", func() {
		It("returns the resultados envelope with the wire field names", func() {
			svc := newTestService(&stubGeocoder{pt: center}, &stubSource{results: sampleRestaurants()})
			handler := RestaurantsByCity(svc, discardLogger())

			req := httptest.NewRequest(http.MethodGet, "/restaurantes/Madrid", nil)
			req.SetPathValue("city", "Madrid")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"resultados"`))
			Expect(rec.Body.String()).To(ContainSubstring(`"titulo"`))
			Expect(rec.Body.String()).To(ContainSubstring(`"rango_de_precios"`))
			Expect(rec.Body.String()).To(ContainSubstring(`"url_maps"`))
		})
	})
})
