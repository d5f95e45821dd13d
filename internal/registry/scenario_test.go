// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package registry_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/holonick/internal/color"
	"github.com/holomush/holonick/internal/registry"
	"github.com/holomush/holonick/pkg/errutil"
)

var _ = Describe("Nickname registry scenarios", func() {
	var (
		ctx     context.Context
		dataDir string
		now     time.Time
		start   time.Time
		reg     *registry.Registry
	)

	at := func(seconds int) {
		now = start.Add(time.Duration(seconds) * time.Second)
	}

	open := func() *registry.Registry {
		r, err := registry.Open(ctx, dataDir,
			registry.WithClock(func() time.Time { return now }),
			registry.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		)
		Expect(err).NotTo(HaveOccurred())
		return r
	}

	BeforeEach(func() {
		ctx = context.Background()
		dataDir = GinkgoT().TempDir()
		start = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
		at(0)
		reg = open()
	})

	AfterEach(func() {
		Expect(reg.Close(ctx)).To(Succeed())
	})

	Describe("two users competing for one nickname", func() {
		It("enforces uniqueness and the cooldown window", func() {
			nick, err := reg.ClaimNickname(ctx, "Alice", "Red")
			Expect(err).NotTo(HaveOccurred())
			Expect(nick).To(Equal("~Red"))

			at(1)
			_, err = reg.ClaimNickname(ctx, "Bob", "Red")
			Expect(errutil.Code(err)).To(Equal(registry.CodeNicknameInUse))

			at(5)
			_, err = reg.ClaimNickname(ctx, "Alice", "Blue")
			Expect(errutil.Code(err)).To(Equal(registry.CodeOnCooldown))
			secs, ok := registry.RemainingSeconds(err)
			Expect(ok).To(BeTrue())
			Expect(secs).To(Equal(int64(10)))

			at(16)
			nick, err = reg.ClaimNickname(ctx, "Alice", "Blue")
			Expect(err).NotTo(HaveOccurred())
			Expect(nick).To(Equal("~Blue"))

			nick, err = reg.ClaimNickname(ctx, "Bob", "Red")
			Expect(err).NotTo(HaveOccurred())
			Expect(nick).To(Equal("~Red"))
		})
	})

	Describe("real name lookup", func() {
		It("returns the owner and their current color", func() {
			_, err := reg.ClaimNickname(ctx, "Alice", "Red")
			Expect(err).NotTo(HaveOccurred())
			_, err = reg.ChangeColor(ctx, "Alice", "light_purple")
			Expect(err).NotTo(HaveOccurred())

			real, err := reg.LookupRealName(ctx, "~Red")
			Expect(err).NotTo(HaveOccurred())
			Expect(real.User).To(Equal("Alice"))
			Expect(real.Color).To(Equal(color.LightPurple))
		})

		It("reflects runtime renames immediately", func() {
			_, err := reg.AssignNicknameToOther(ctx, "Op", "Carol", "Gold")
			Expect(err).NotTo(HaveOccurred())

			real, err := reg.LookupRealName(ctx, "~Gold")
			Expect(err).NotTo(HaveOccurred())
			Expect(real.User).To(Equal("Carol"))
		})
	})

	Describe("reset", func() {
		It("clears the binding and reverts the color", func() {
			_, err := reg.ClaimNickname(ctx, "Alice", "Red")
			Expect(err).NotTo(HaveOccurred())
			_, err = reg.ChangeColor(ctx, "Alice", "gold")
			Expect(err).NotTo(HaveOccurred())

			Expect(reg.ResetNickname(ctx, "Alice")).To(Succeed())

			p := reg.Profile(ctx, "Alice")
			Expect(p.HasNickname()).To(BeFalse())
			Expect(p.Color).To(Equal(color.White))
			Expect(p.DisplayName("Alice")).To(Equal("Alice"))

			_, err = reg.LookupRealName(ctx, "~Red")
			Expect(errutil.Code(err)).To(Equal(registry.CodeNotFound))
		})
	})

	Describe("restart", func() {
		It("restores profiles but not cooldowns", func() {
			_, err := reg.ClaimNickname(ctx, "Alice", "Red")
			Expect(err).NotTo(HaveOccurred())
			_, err = reg.ChangeColor(ctx, "Alice", "aqua")
			Expect(err).NotTo(HaveOccurred())
			Expect(reg.Close(ctx)).To(Succeed())

			reg = open()
			Expect(reg.Profile(ctx, "Alice").DisplayName("Alice")).To(Equal("~Red"))
			Expect(reg.Profile(ctx, "Alice").Color).To(Equal(color.Aqua))

			_, err = reg.ChangeColor(ctx, "Alice", "gold")
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
