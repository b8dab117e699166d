package wsbridge_test

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"

	. "github.com/Sokpao/Agent-TAC/ws/wsbridge"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

type inbox struct {
	lock     sync.Mutex
	payloads []string
}

func (i *inbox) add(p []byte) {
	i.lock.Lock()
	defer i.lock.Unlock()
	i.payloads = append(i.payloads, string(p))
}

func (i *inbox) All() []string {
	i.lock.Lock()
	defer i.lock.Unlock()
	return append([]string{}, i.payloads...)
}

var _ = Describe("Transport", func() {
	var (
		logger   *slog.Logger
		server   *httptest.Server
		received *inbox
		client   *Transport
	)

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(GinkgoWriter, nil))
		received = &inbox{}

		server = httptest.NewServer(Handler(logger, func(t *Transport) {
			Ω(t.Subscribe(func(p []byte) {
				received.add(p)
				_ = t.Publish(append([]byte("echo:"), p...))
			})).Should(Succeed())
			<-t.Done()
		}))

		var err error
		client, err = Dial(context.Background(), "ws"+strings.TrimPrefix(server.URL, "http"), logger)
		Ω(err).ShouldNot(HaveOccurred())
	})

	AfterEach(func() {
		client.Close()
		server.Close()
	})

	It("carries messages both ways", func() {
		echoes := &inbox{}
		Ω(client.Subscribe(echoes.add)).Should(Succeed())

		Ω(client.Publish([]byte("bid-1"))).Should(Succeed())
		Ω(client.Publish([]byte("bid-2"))).Should(Succeed())

		Eventually(received.All).Should(Equal([]string{"bid-1", "bid-2"}))
		Eventually(echoes.All).Should(Equal([]string{"echo:bid-1", "echo:bid-2"}))
	})

	It("only reads once", func() {
		Ω(client.Subscribe(func([]byte) {})).Should(Succeed())
		Ω(client.Subscribe(func([]byte) {})).Should(MatchError(AlreadySubscribed))
	})

	It("stops reading when the connection closes", func() {
		Ω(client.Subscribe(func([]byte) {})).Should(Succeed())
		client.Close()
		Eventually(client.Done()).Should(BeClosed())
	})

	It("fails to dial nowhere", func() {
		_, err := Dial(context.Background(), "ws://127.0.0.1:1/nope", logger)
		Ω(err).Should(HaveOccurred())
	})
})
