package logger_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/rephrase/pkg/logger"
)

var _ = Describe("NewLoggerTo", func() {
	var buf *bytes.Buffer

	BeforeEach(func() {
		buf = &bytes.Buffer{}
	})

	It("writes info entries with structured fields", func() {
		log := logger.NewLoggerTo(buf, false)
		log.Info("relay starting", zap.String("listen", ":3001"))
		Expect(log.Sync()).To(Succeed())

		Expect(buf.String()).To(ContainSubstring("relay starting"))
		Expect(buf.String()).To(ContainSubstring(`"listen": ":3001"`))
	})

	It("drops debug entries unless debug is enabled", func() {
		log := logger.NewLoggerTo(buf, false)
		log.Debug("hidden")
		Expect(buf.String()).NotTo(ContainSubstring("hidden"))

		log = logger.NewLoggerTo(buf, true)
		log.Debug("visible")
		Expect(buf.String()).To(ContainSubstring("visible"))
	})
})
