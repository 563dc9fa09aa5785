package cli

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/sakif/mesto/internal/app"
	"github.com/sakif/mesto/internal/model"
)

func runSignup(ctx context.Context, c *CLI, args []string) error {
	email, password, err := c.credentials("signup", args)
	if err != nil {
		return err
	}
	c.ctrl.Navigate(app.RouteSignUp)
	// The tooltip view reports the outcome.
	return c.ctrl.Register(ctx, email, password)
}

func runSignin(ctx context.Context, c *CLI, args []string) error {
	email, password, err := c.credentials("signin", args)
	if err != nil {
		return err
	}
	if err := c.ctrl.Login(ctx, email, password); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Signed in as %s\n", c.ctrl.Snapshot().Email)
	return nil
}

func runSignout(ctx context.Context, c *CLI, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	if err := c.ctrl.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Signed out")
	return nil
}

func runStatus(_ context.Context, c *CLI, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	s := c.ctrl.Snapshot()
	fmt.Fprintf(c.out, "Session: %s\n", s.Session)
	fmt.Fprintf(c.out, "Email:   %s\n", s.Email)
	if s.User != nil {
		renderUser(c, s.User)
	}
	return nil
}

func runFeed(_ context.Context, c *CLI, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	s := c.ctrl.Snapshot()
	if s.User != nil {
		renderUser(c, s.User)
		fmt.Fprintln(c.out)
	}
	renderCards(c, s)
	return nil
}

func runLike(ctx context.Context, c *CLI, args []string) error {
	card, err := c.cardArg(args)
	if err != nil {
		return err
	}
	if err := c.ctrl.ToggleLike(ctx, card); err != nil {
		return err
	}

	s := c.ctrl.Snapshot()
	updated, _ := s.CardByID(card.ID)
	verb := "Unliked"
	if updated.LikedBy(s.UserID()) {
		verb = "Liked"
	}
	fmt.Fprintf(c.out, "%s %q (%d likes)\n", verb, updated.Name, len(updated.Likes))
	return nil
}

func runAdd(ctx context.Context, c *CLI, args []string) error {
	fs := c.newFlags("add")
	name := fs.String("name", "", "card title")
	link := fs.String("link", "", "image URL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *link == "" || fs.NArg() != 0 {
		return errUsage
	}

	c.ctrl.OpenAddPlace()
	if err := c.ctrl.AddCard(ctx, *name, *link); err != nil {
		c.ctrl.ClosePopups()
		return err
	}

	card := c.ctrl.Snapshot().Cards[0]
	fmt.Fprintf(c.out, "Added %q as %s\n", card.Name, card.ID)
	return nil
}

func runDelete(ctx context.Context, c *CLI, args []string) error {
	card, err := c.cardArg(args)
	if err != nil {
		return err
	}

	c.ctrl.OpenConfirmDelete(card)
	if err := c.ctrl.DeleteCard(ctx, card); err != nil {
		c.ctrl.ClosePopups()
		return err
	}
	fmt.Fprintf(c.out, "Deleted %q\n", card.Name)
	return nil
}

func runProfile(ctx context.Context, c *CLI, args []string) error {
	fs := c.newFlags("profile")
	name := fs.String("name", "", "display name")
	about := fs.String("about", "", "short description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *about == "" || fs.NArg() != 0 {
		return errUsage
	}

	c.ctrl.OpenEditProfile()
	if err := c.ctrl.UpdateProfile(ctx, *name, *about); err != nil {
		c.ctrl.ClosePopups()
		return err
	}
	renderUser(c, c.ctrl.Snapshot().User)
	return nil
}

func runAvatar(ctx context.Context, c *CLI, args []string) error {
	link, err := oneArg(args)
	if err != nil {
		return err
	}

	c.ctrl.OpenEditAvatar()
	if err := c.ctrl.UpdateAvatar(ctx, link); err != nil {
		c.ctrl.ClosePopups()
		return err
	}
	renderUser(c, c.ctrl.Snapshot().User)
	return nil
}

func runShow(_ context.Context, c *CLI, args []string) error {
	card, err := c.cardArg(args)
	if err != nil {
		return err
	}

	c.ctrl.OpenImagePreview(card)
	defer c.ctrl.ClosePopups()

	preview, ok := c.ctrl.Snapshot().Popup.(app.PopupImagePreview)
	if !ok {
		return fmt.Errorf("preview did not open")
	}
	fmt.Fprintf(c.out, "%s\n%s\n", preview.Card.Name, preview.Card.Link)
	return nil
}

func renderUser(c *CLI, u *model.User) {
	if u == nil {
		return
	}
	fmt.Fprintf(c.out, "%s, %s\n", u.Name, u.About)
	fmt.Fprintf(c.out, "Avatar:  %s\n", u.Avatar)
}

// renderCards prints the feed as a table. A heart marks cards the user likes;
// a star marks the user's own cards, which only they can delete.
func renderCards(c *CLI, s app.State) {
	if len(s.Cards) == 0 {
		fmt.Fprintln(c.out, "No cards yet. Add one with: mesto add -name NAME -link URL")
		return
	}

	me := s.UserID()
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tLIKES\t\tLINK")
	for _, card := range s.Cards {
		marks := ""
		if card.LikedBy(me) {
			marks += "♥"
		}
		if me != "" && card.Owner == me {
			marks += "★"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", card.ID, card.Name, strconv.Itoa(len(card.Likes)), marks, card.Link)
	}
	w.Flush()
}
