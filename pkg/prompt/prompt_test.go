package prompt_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/rephrase/pkg/prompt"
)

var _ = Describe("Builder", func() {
	Describe("NewBuilder", func() {
		It("rejects counts below one", func() {
			_, err := prompt.NewBuilder(0, prompt.AtLeast, "")
			Expect(err).To(MatchError(prompt.ErrInvalidCount))
		})

		It("defaults an empty mode to at-least", func() {
			b, err := prompt.NewBuilder(5, "", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(b.Mode()).To(Equal(prompt.AtLeast))
			Expect(b.Count()).To(Equal(5))
		})

		It("rejects unknown modes", func() {
			_, err := prompt.NewBuilder(5, prompt.Mode("most"), "")
			Expect(err).To(HaveOccurred())
		})

		It("rejects malformed templates", func() {
			_, err := prompt.NewBuilder(5, prompt.AtLeast, "{{.Sentence")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("parse prompt template"))
		})
	})

	Describe("Build", func() {
		It("asks for at least N rewordings", func() {
			b, err := prompt.NewBuilder(prompt.DefaultCount, prompt.AtLeast, "")
			Expect(err).NotTo(HaveOccurred())

			p, err := b.Build("I am happy today.")
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(ContainSubstring("at least 20"))
			Expect(p).To(ContainSubstring(`"I am happy today."`))
			Expect(p).To(ContainSubstring("own line"))
			Expect(p).To(ContainSubstring("Do not number"))
		})

		It("asks for exactly N rewordings", func() {
			b, err := prompt.NewBuilder(12, prompt.Exactly, "")
			Expect(err).NotTo(HaveOccurred())

			p, err := b.Build("Hello.")
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(ContainSubstring("exactly 12"))
			Expect(p).NotTo(ContainSubstring("at least"))
		})

		It("renders custom templates", func() {
			b, err := prompt.NewBuilder(3, prompt.Exactly, "{{.Count}}|{{.Quantity}}|{{.Sentence}}")
			Expect(err).NotTo(HaveOccurred())

			p, err := b.Build("x")
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(Equal("3|exactly 3|x"))
		})

		It("inserts the sentence without escaping", func() {
			b, err := prompt.NewBuilder(1, prompt.AtLeast, "{{.Sentence}}")
			Expect(err).NotTo(HaveOccurred())

			p, err := b.Build(`<a & "b">`)
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(Equal(`<a & "b">`))
		})
	})

	Describe("ParseMode", func() {
		DescribeTable("accepted values",
			func(in string, want prompt.Mode) {
				m, err := prompt.ParseMode(in)
				Expect(err).NotTo(HaveOccurred())
				Expect(m).To(Equal(want))
			},
			Entry("empty", "", prompt.AtLeast),
			Entry("at-least", "at-least", prompt.AtLeast),
			Entry("exactly upper-case", " EXACTLY ", prompt.Exactly),
		)

		It("rejects unknown values", func() {
			_, err := prompt.ParseMode("some")
			Expect(err).To(HaveOccurred())
		})
	})
})
