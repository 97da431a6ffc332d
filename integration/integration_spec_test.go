package integration

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var baseURL string
var stopApp func()

var _ = BeforeSuite(func() {
	if u := os.Getenv("INTEGRATION_BASE_URL"); u != "" {
		baseURL = strings.TrimSuffix(u, "/")
		return
	}
	var err error
	baseURL, stopApp, err = StartApp()
	Expect(err).NotTo(HaveOccurred())
	Expect(baseURL).NotTo(BeEmpty())
})

var _ = AfterSuite(func() {
	if stopApp != nil {
		stopApp()
	}
})

var _ = Describe("Integration", func() {
	Describe("Operational endpoints", func() {
		It("GET /health returns 200 and status ok", func() {
			resp, err := http.Get(baseURL + "/health")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var body map[string]string
			Expect(json.NewDecoder(resp.Body).Decode(&body)).NotTo(HaveOccurred())
			Expect(body["status"]).To(Equal("ok"))
			Expect(body).To(HaveKey("version"))
		})

		It("GET /health/ready returns 200 with the sqlite catalog", func() {
			resp, err := http.Get(baseURL + "/health/ready")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})

		It("GET /version returns 200 and version in JSON", func() {
			resp, err := http.Get(baseURL + "/version")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(ContainSubstring("application/json"))
			var body map[string]string
			Expect(json.NewDecoder(resp.Body).Decode(&body)).NotTo(HaveOccurred())
			Expect(body).To(HaveKey("version"))
		})

		It("GET /metrics returns 200 and Prometheus output", func() {
			resp, err := http.Get(baseURL + "/metrics")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			body, _ := io.ReadAll(resp.Body)
			Expect(string(body)).To(ContainSubstring("bistrohunter"))
		})

		It("GET /docs returns 200 and HTML with swagger-ui", func() {
			resp, err := http.Get(baseURL + "/docs")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(ContainSubstring("text/html"))
			body, _ := io.ReadAll(resp.Body)
			Expect(string(body)).To(ContainSubstring("swagger-ui"))
		})

		It("GET /openapi.yaml returns 200 and YAML", func() {
			resp, err := http.Get(baseURL + "/openapi.yaml")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(Equal("application/x-yaml"))
			body, _ := io.ReadAll(resp.Body)
			Expect(string(body)).To(ContainSubstring("openapi"))
		})

		It("GET / returns the welcome message", func() {
			resp, err := http.Get(baseURL + "/")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var body map[string]string
			Expect(json.NewDecoder(resp.Body).Decode(&body)).NotTo(HaveOccurred())
			Expect(body["mensaje"]).To(ContainSubstring("BistroHunter"))
		})
	})

	Describe("GET /restaurantes/{city}", func() {
		It("answers 502 when the geocoder is unreachable", func() {
			resp, err := http.Get(baseURL + "/restaurantes/Madrid")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusBadGateway))

			var body map[string]map[string]any
			Expect(json.NewDecoder(resp.Body).Decode(&body)).NotTo(HaveOccurred())
			Expect(body).To(HaveKey("error"))
		})
	})

	Describe("GET /api/getRestaurants", func() {
		It("without city returns 400", func() {
			resp, err := http.Get(baseURL + "/api/getRestaurants")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("with coordinates skips geocoding and answers from the catalog", func() {
			resp, err := http.Get(baseURL + "/api/getRestaurants?city=Madrid&coordenadas=40.4168,-3.7038")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body struct {
				Resultados []any             `json:"resultados"`
				Variables  map[string]string `json:"variables"`
			}
			Expect(json.NewDecoder(resp.Body).Decode(&body)).NotTo(HaveOccurred())
			Expect(body.Resultados).To(BeEmpty())
			Expect(body.Variables["city"]).To(Equal("Madrid"))
		})
	})

	Describe("POST /procesar-variables", func() {
		It("with a bad date returns 400", func() {
			body := `{"city":"Madrid","date":"31/08/2026"}`
			resp, err := http.Post(baseURL+"/procesar-variables", "application/json", strings.NewReader(body))
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("answers 200 with a message when nothing matches", func() {
			body := `{"city":"Madrid","coordenadas":"40.4168,-3.7038"}`
			resp, err := http.Post(baseURL+"/procesar-variables", "application/json", strings.NewReader(body))
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var out struct {
				Mensaje   string            `json:"mensaje"`
				Variables map[string]string `json:"variables"`
			}
			Expect(json.NewDecoder(resp.Body).Decode(&out)).NotTo(HaveOccurred())
			Expect(out.Mensaje).NotTo(BeEmpty())
			Expect(out.Variables["city"]).To(Equal("Madrid"))
		})
	})
})
