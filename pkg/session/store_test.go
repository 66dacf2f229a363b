package session_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/SAMRAT47/genchat/pkg/llm"
	"github.com/SAMRAT47/genchat/pkg/session"
)

// Both backends must satisfy the same contract; the suite runs once per
// constructor.
var backends = []struct {
	name string
	open func() session.Store
}{
	{"MemoryStore", func() session.Store { return session.NewMemoryStore() }},
	{"SQLiteStore", func() session.Store {
		store, err := session.NewSQLiteStore(":memory:")
		Expect(err).NotTo(HaveOccurred())
		return store
	}},
}

var _ = Describe("Store", func() {
	for _, backend := range backends {
		Describe(backend.name, func() {
			var (
				store session.Store
				ctx   context.Context
			)

			BeforeEach(func() {
				ctx = context.Background()
				store = backend.open()
			})

			AfterEach(func() {
				Expect(store.Close()).To(Succeed())
			})

			Describe("Create and Get", func() {
				It("creates an empty session with a fresh id", func() {
					sess, err := store.Create(ctx)
					Expect(err).NotTo(HaveOccurred())
					Expect(sess.ID).NotTo(BeEmpty())
					Expect(sess.Messages).To(BeEmpty())

					got, err := store.Get(ctx, sess.ID)
					Expect(err).NotTo(HaveOccurred())
					Expect(got.ID).To(Equal(sess.ID))
					Expect(got.Messages).To(BeEmpty())
				})

				It("returns ErrNotFound for an unknown id", func() {
					_, err := store.Get(ctx, "nonexistent")
					Expect(err).To(MatchError(session.ErrNotFound{ID: "nonexistent"}))
				})

				It("gives each session a distinct id", func() {
					a, _ := store.Create(ctx)
					b, _ := store.Create(ctx)
					Expect(a.ID).NotTo(Equal(b.ID))
				})
			})

			Describe("Append", func() {
				It("preserves insertion order", func() {
					sess, _ := store.Create(ctx)

					Expect(store.Append(ctx, sess.ID, llm.NewMessage(llm.RoleUser, "one"))).To(Succeed())
					Expect(store.Append(ctx, sess.ID, llm.NewMessage(llm.RoleAssistant, "two"))).To(Succeed())
					Expect(store.Append(ctx, sess.ID, llm.NewMessage(llm.RoleUser, "three"))).To(Succeed())

					got, err := store.Get(ctx, sess.ID)
					Expect(err).NotTo(HaveOccurred())
					Expect(got.Messages).To(HaveLen(3))
					Expect(got.Messages[0].Content).To(Equal("one"))
					Expect(got.Messages[1].Content).To(Equal("two"))
					Expect(got.Messages[2].Content).To(Equal("three"))
				})

				It("rejects appends to unknown sessions", func() {
					err := store.Append(ctx, "nonexistent", llm.NewMessage(llm.RoleUser, "hi"))
					Expect(err).To(MatchError(session.ErrNotFound{ID: "nonexistent"}))
				})

				It("leaves previously read messages untouched", func() {
					sess, _ := store.Create(ctx)
					Expect(store.Append(ctx, sess.ID, llm.NewMessage(llm.RoleUser, "original"))).To(Succeed())

					before, _ := store.Get(ctx, sess.ID)
					Expect(store.Append(ctx, sess.ID, llm.NewMessage(llm.RoleAssistant, "later"))).To(Succeed())

					Expect(before.Messages).To(HaveLen(1))
					Expect(before.Messages[0].Content).To(Equal("original"))
				})
			})

			Describe("Clear", func() {
				It("always yields an empty sequence regardless of prior length", func() {
					sess, _ := store.Create(ctx)
					for i := 0; i < 25; i++ {
						Expect(store.Append(ctx, sess.ID, llm.NewMessage(llm.RoleUser, "msg"))).To(Succeed())
					}

					Expect(store.Clear(ctx, sess.ID)).To(Succeed())

					got, err := store.Get(ctx, sess.ID)
					Expect(err).NotTo(HaveOccurred())
					Expect(got.Messages).To(BeEmpty())
				})

				It("is idempotent on an already-empty session", func() {
					sess, _ := store.Create(ctx)
					Expect(store.Clear(ctx, sess.ID)).To(Succeed())
					Expect(store.Clear(ctx, sess.ID)).To(Succeed())

					got, _ := store.Get(ctx, sess.ID)
					Expect(got.Messages).To(BeEmpty())
				})

				It("keeps the session itself alive", func() {
					sess, _ := store.Create(ctx)
					Expect(store.Clear(ctx, sess.ID)).To(Succeed())

					_, err := store.Get(ctx, sess.ID)
					Expect(err).NotTo(HaveOccurred())
				})
			})

			Describe("List", func() {
				It("returns the most recently updated session first", func() {
					first, _ := store.Create(ctx)
					second, _ := store.Create(ctx)

					Expect(store.Append(ctx, first.ID, llm.NewMessage(llm.RoleUser, "bump"))).To(Succeed())

					sessions, err := store.List(ctx)
					Expect(err).NotTo(HaveOccurred())
					Expect(sessions).To(HaveLen(2))
					Expect(sessions[0].ID).To(Equal(first.ID))
					Expect(sessions[1].ID).To(Equal(second.ID))
				})
			})

			Describe("Delete", func() {
				It("removes the session and its messages", func() {
					sess, _ := store.Create(ctx)
					Expect(store.Append(ctx, sess.ID, llm.NewMessage(llm.RoleUser, "hi"))).To(Succeed())

					Expect(store.Delete(ctx, sess.ID)).To(Succeed())

					_, err := store.Get(ctx, sess.ID)
					Expect(err).To(MatchError(session.ErrNotFound{ID: sess.ID}))
				})

				It("returns ErrNotFound for an unknown id", func() {
					Expect(store.Delete(ctx, "nonexistent")).To(MatchError(session.ErrNotFound{ID: "nonexistent"}))
				})
			})
		})
	}
})

var _ = Describe("Stats", func() {
	It("counts user and assistant messages", func() {
		sess := &session.Session{
			Messages: []llm.Message{
				{Role: llm.RoleUser, Content: "q1"},
				{Role: llm.RoleAssistant, Content: "a1"},
				{Role: llm.RoleUser, Content: "q2"},
			},
		}

		stats := sess.Stats()
		Expect(stats.UserMessages).To(Equal(2))
		Expect(stats.AssistantMessages).To(Equal(1))
		Expect(stats.TotalMessages).To(Equal(3))
	})

	It("is all zeros for an empty session", func() {
		Expect((&session.Session{}).Stats()).To(Equal(session.Stats{}))
	})
})
