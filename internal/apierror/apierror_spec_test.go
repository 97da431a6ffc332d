package apierror

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Error", func() {
	It("implements error interface with message", func() {
		e := InvalidRequest("bad input")
		Expect(e.Error()).To(Equal("bad input"))
	})
})

var _ = Describe("Write", func() {
	It("writes JSON with status and error envelope", func() {
		e := InvalidRequest("invalid JSON")
		rec := httptest.NewRecorder()
		Write(rec, e)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))
		var body struct {
			Error struct {
				Message string `json:"message"`
				Type    string `json:"type"`
			} `json:"error"`
		}
		Expect(json.NewDecoder(rec.Body).Decode(&body)).NotTo(HaveOccurred())
		Expect(body.Error.Message).To(Equal("invalid JSON"))
		Expect(body.Error.Type).To(Equal(TypeInvalidRequest))
	})
})

var _ = Describe("InvalidParam", func() {
	It("returns 400 with param set", func() {
		e := InvalidParam("city", "city is required")
		Expect(e.Status).To(Equal(http.StatusBadRequest))
		Expect(e.Type).To(Equal(TypeInvalidRequest))
		Expect(e.Param).To(Equal("city"))
		Expect(e.Message).To(Equal("city is required"))
	})
})

var _ = Describe("NotFound", func() {
	It("returns 404 with no_results code", func() {
		e := NotFound("No restaurants found for Atlantis.")
		Expect(e.Status).To(Equal(http.StatusNotFound))
		Expect(e.Type).To(Equal(TypeNotFound))
		Expect(e.Code).To(Equal("no_results"))
		Expect(e.Message).To(ContainSubstring("Atlantis"))
	})
})

var _ = Describe("Unauthorized", func() {
	It("returns 401 with invalid_api_key code", func() {
		e := Unauthorized("Invalid API key.")
		Expect(e.Status).To(Equal(http.StatusUnauthorized))
		Expect(e.Type).To(Equal(TypeAuthentication))
		Expect(e.Code).To(Equal("invalid_api_key"))
	})
})

var _ = Describe("RateLimited", func() {
	It("returns 429 with rate_limit_exceeded code", func() {
		e := RateLimited()
		Expect(e.Status).To(Equal(http.StatusTooManyRequests))
		Expect(e.Type).To(Equal(TypeRateLimit))
		Expect(e.Code).To(Equal("rate_limit_exceeded"))
	})
})

var _ = Describe("Upstream", func() {
	It("returns 502 with provider name in message", func() {
		e := Upstream("airtable")
		Expect(e.Status).To(Equal(http.StatusBadGateway))
		Expect(e.Type).To(Equal(TypeUpstream))
		Expect(e.Code).To(Equal("upstream_failure"))
		Expect(e.Message).To(ContainSubstring("airtable"))
	})
})

var _ = Describe("Internal", func() {
	It("returns 500 with type server_error", func() {
		e := Internal("unexpected failure")
		Expect(e.Status).To(Equal(http.StatusInternalServerError))
		Expect(e.Type).To(Equal(TypeServer))
		Expect(e.Message).To(Equal("unexpected failure"))
	})
})
