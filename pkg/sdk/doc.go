// Package sdk provides a typed Go client for the rfpdesk REST backend.
//
// Every call carries a bearer token from an oauth2.TokenSource and the
// organization found in the request context. Reads are retried with
// exponential backoff via fortify; writes are sent once. Every call is
// bounded by a timeout.
//
// Usage:
//
//	tokens := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
//	c, _ := sdk.NewClient("https://api.example.com", tokens)
//	ctx = sdk.WithOrganization(ctx, "org-1")
//	project, _ := c.GetProject(ctx, "rfp-42")
//	fmt.Println(project.Name)
package sdk
