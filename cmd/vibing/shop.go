// cmd/vibing/shop.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vibing/vibing-client/internal/api"
	"github.com/vibing/vibing-client/internal/app"
	"github.com/vibing/vibing-client/internal/catalog"
	"github.com/vibing/vibing-client/internal/i18n"
	"github.com/vibing/vibing-client/internal/payment"
	"github.com/vibing/vibing-client/internal/purchase"
)

func runProducts(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	sel := catalog.DefaultSelection()
	fs := newFlags("products")
	fs.StringVar(&sel.Category, "category", sel.Category, "category id or all")
	fs.StringVar(&sel.Search, "search", "", "search text")
	fs.StringVar(&sel.PriceFilter, "price", sel.PriceFilter, "all, free, under-10, 10-50, 50-100, over-100")
	fs.StringVar(&sel.Sort, "sort", sel.Sort, "sort order")
	fs.IntVar(&sel.Page, "page", 1, "page number")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	if err := a.Catalog.Select(ctx, sel); err != nil {
		return err
	}
	st := a.Catalog.State()
	if st.FromCache {
		fmt.Fprintf(out, "Offline: showing results cached %s (%s)\n\n", clock(st.FetchedAt), st.Err)
	}
	if len(st.Products) == 0 {
		fmt.Fprintln(out, "No products found.")
		return nil
	}

	w := table(out)
	fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tPRICE\tRATING\tDOWNLOADS")
	for _, p := range st.Products {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f (%d)\t%d\n",
			p.ID, truncate(p.Title, 40), p.Category, usd(p.Price), p.Rating, p.ReviewCount, p.Downloads)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	pageFooter(out, st.Pagination)
	return nil
}

func runProduct(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	p, err := a.Client.Products.Get(ctx, args[0])
	if err != nil {
		return err
	}

	w := table(out)
	fmt.Fprintf(w, "Title\t%s\n", p.Title)
	fmt.Fprintf(w, "Author\t%s\n", p.Author)
	fmt.Fprintf(w, "Category\t%s\n", p.Category)
	fmt.Fprintf(w, "Price\t%s (%s with fees)\n", usd(p.Price), purchase.FormatPrice(a.Purchases.Quote(*p)))
	if len(p.Tags) > 0 {
		fmt.Fprintf(w, "Tags\t%s\n", strings.Join(p.Tags, ", "))
	}
	if p.Version != "" {
		fmt.Fprintf(w, "Version\t%s\n", p.Version)
	}
	if p.DemoURL != "" {
		fmt.Fprintf(w, "Demo\t%s\n", p.DemoURL)
	}
	if p.GithubURL != "" {
		fmt.Fprintf(w, "GitHub\t%s\n", p.GithubURL)
	}
	fmt.Fprintf(w, "Rating\t%s %.1f (%d reviews)\n", stars(int(p.Rating+0.5)), p.Rating, p.ReviewCount)

	if a.Session.State().IsAuthenticated() {
		if check, err := a.Purchases.CheckStatus(ctx, p.ID); err == nil && check.Purchased {
			fmt.Fprintf(w, "Owned\tyes (purchase %s)\n", check.PurchaseID)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%s\n", p.Description)
	return nil
}

func runLike(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	res, err := a.Catalog.ToggleLike(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "liked: %t (%d likes)\n", res.Liked, res.Likes)
	return nil
}

func runBuy(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	fs := newFlags("buy")
	email := fs.String("email", "", "receipt email, defaults to the account email")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return errUsage
	}

	p, err := a.Client.Products.Get(ctx, pos[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %s\n", p.Title, purchase.FormatPrice(a.Purchases.Quote(*p)))

	bought, err := a.Purchases.Checkout(ctx, *p, *email)
	if err != nil {
		msg := api.Message(err)
		var perr *payment.ProviderError
		if errors.As(err, &perr) {
			msg = perr.Message
		}
		return errors.New(a.T(i18n.KeyPaymentFailed, msg))
	}
	fmt.Fprintln(out, a.T(i18n.KeyPurchaseSuccess, bought.OrderID))
	if bought.LicenseKey != "" {
		fmt.Fprintln(out, "License:", bought.LicenseKey)
	}
	fmt.Fprintln(out, a.T(i18n.KeyDisputeWindow))
	return nil
}

func runHistory(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	fs := newFlags("history")
	status := fs.String("status", "all", "status filter")
	sortBy := fs.String("sort", "newest", "newest, oldest, price-high, price-low, product-name")
	page := fs.Int("page", 1, "page number")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	if err := a.Purchases.SetStatusFilter(*status); err != nil {
		return err
	}
	if err := a.Purchases.SetSortBy(*sortBy); err != nil {
		return err
	}
	if err := a.Purchases.LoadHistory(ctx, *page); err != nil {
		return err
	}

	st := a.Purchases.State()
	items := st.Filtered()
	if len(items) == 0 {
		fmt.Fprintln(out, a.T(i18n.KeyPurchaseEmpty))
		return nil
	}

	w := table(out)
	fmt.Fprintln(w, "ID\tDATE\tPRODUCT\tPRICE\tSTATUS\tNOTE")
	for _, p := range items {
		note := ""
		if p.DaysUntilAutoConfirm != nil {
			note = a.T(i18n.KeyAutoConfirmCountdown, *p.DaysUntilAutoConfirm)
		}
		if p.CanRequestDispute {
			note = strings.TrimSpace(note + " (dispute available)")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", p.ID, day(p.PurchaseDate), truncate(p.Product.Title, 32),
			usd(p.Price), purchase.StatusLabel(a.Translator, a.Lang(), p.Status), note)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	pageFooter(out, st.Pagination)
	return nil
}

func runDispute(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	if err := a.Purchases.LoadHistory(ctx, 1); err != nil {
		return err
	}
	if err := a.Purchases.RequestDispute(ctx, args[0], strings.Join(args[1:], " ")); err != nil {
		return err
	}
	fmt.Fprintln(out, a.T(i18n.KeyDisputeSubmitted))
	return nil
}

func runDownload(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := a.Purchases.LoadHistory(ctx, 1); err != nil {
		return err
	}
	location, err := a.Purchases.Download(ctx, args[0])
	if err != nil {
		return fmt.Errorf("%s %w", a.T(i18n.KeyDownloadFailed), err)
	}
	fmt.Fprintln(out, "Saved to", location)
	return nil
}

func runLicense(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	info, err := a.Purchases.GenerateLicense(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(out, info.LicenseKey)
	return nil
}

func runStats(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	st, err := a.Purchases.Stats(ctx)
	if err != nil {
		return err
	}
	w := table(out)
	fmt.Fprintf(w, "Purchases\t%d\n", st.TotalPurchases)
	fmt.Fprintf(w, "Completed\t%d\n", st.CompletedPurchases)
	fmt.Fprintf(w, "Total spent\t%s\n", usd(st.TotalSpent))
	return w.Flush()
}

func runReviews(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	fs := newFlags("reviews")
	page := fs.Int("page", 1, "page number")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return errUsage
	}
	productID := pos[0]

	summary, err := a.Reviews.Distribution(ctx, productID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%.1f average from %d reviews\n", summary.Average, summary.Total)
	for rating := 5; rating >= 1; rating-- {
		fmt.Fprintf(out, "  %s %d\n", stars(rating), summary.Distribution[rating])
	}

	list, err := a.Reviews.List(ctx, productID, *page)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	for _, r := range list.Reviews {
		author := r.UserID
		if r.User != nil {
			author = r.User.Name
		}
		fmt.Fprintf(out, "%s  %s  %s  [%s]\n  %s\n", stars(r.Rating), author, day(r.CreatedAt), r.ID, r.Comment)
	}
	if list.HasMore {
		fmt.Fprintf(out, "\nmore: vibing reviews %s -page %d\n", productID, *page+1)
	}
	return nil
}

func runReview(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	mode := "submit"
	switch args[0] {
	case "edit", "delete":
		mode = args[0]
		args = args[1:]
	}

	fs := newFlags("review")
	rating := fs.Int("rating", 0, "1 to 5 stars")
	comment := fs.String("comment", "", "review text")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return errUsage
	}

	switch mode {
	case "delete":
		if err := a.Reviews.Delete(ctx, pos[0]); err != nil {
			return err
		}
		fmt.Fprintln(out, "Review deleted.")
		return nil
	case "edit":
		if _, err := a.Reviews.Update(ctx, pos[0], *rating, *comment); err != nil {
			return err
		}
	default:
		if _, err := a.Reviews.Submit(ctx, pos[0], *rating, *comment); err != nil {
			return err
		}
	}
	fmt.Fprintln(out, a.T(i18n.KeyReviewSubmitted))
	return nil
}
