package catalog

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// minimalSource implements Source for registry tests (no HTTP).
type minimalSource struct {
	name string
}

func (m minimalSource) Name() string                  { return m.name }
func (m minimalSource) Health(context.Context) error  { return nil }
func (m minimalSource) Search(context.Context, Query) ([]Restaurant, error) {
	return nil, nil
}

var _ = Describe("Registry", func() {
	Describe("NewRegistry", func() {
		It("returns an empty registry", func() {
			reg := NewRegistry()
			Expect(reg).NotTo(BeNil())
			Expect(reg.All()).To(BeEmpty())
		})
	})

	Describe("Register and Get", func() {
		It("registers a source and returns it as primary when name is empty", func() {
			reg := NewRegistry()
			s := &minimalSource{name: "airtable"}
			reg.Register(s)

			got, err := reg.Get("")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(s))
			Expect(got.Name()).To(Equal("airtable"))
		})

		It("returns source by name", func() {
			reg := NewRegistry()
			s1 := &minimalSource{name: "first"}
			s2 := &minimalSource{name: "second"}
			reg.Register(s1)
			reg.Register(s2)

			got, err := reg.Get("second")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(s2))
		})

		It("returns ErrSourceNotFound for unknown name", func() {
			reg := NewRegistry()
			reg.Register(&minimalSource{name: "airtable"})

			_, err := reg.Get("unknown")
			Expect(err).To(HaveOccurred())
			Expect(err).To(MatchError(ContainSubstring("catalog source not found")))
		})
	})

	Describe("Primary", func() {
		It("returns the first registered source", func() {
			reg := NewRegistry()
			s := &minimalSource{name: "primary"}
			reg.Register(s)

			got, err := reg.Primary()
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(s))
		})

		It("returns error when no sources registered", func() {
			reg := NewRegistry()
			_, err := reg.Primary()
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("All", func() {
		It("returns all registered sources", func() {
			reg := NewRegistry()
			reg.Register(&minimalSource{name: "a"})
			reg.Register(&minimalSource{name: "b"})

			all := reg.All()
			Expect(all).To(HaveLen(2))
			names := []string{all[0].Name(), all[1].Name()}
			Expect(names).To(ConsistOf("a", "b"))
		})
	})
})
