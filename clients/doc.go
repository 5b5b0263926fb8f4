// Package clients provides thin facades over the Ohmage, FitBit and
// BodyMedia REST APIs: one method per remote endpoint, parameters assembled
// client side, validation largely pushed to the server, responses parsed as
// JSON and returned verbatim.
//
// A typical Ohmage session:
//
//	api := clients.NewOhmage(&models.Config{Server: "https://dev.mobilizingcs.org"})
//
//	// Login caches both a short-use token and a hashed password in the
//	// handle; any method that needs credentials falls back on them when no
//	// session is passed explicitly.
//	session, err := api.Login(ctx, "alice", "secret")
//	if err != nil {
//		return err
//	}
//
//	result, err := api.CampaignRead(ctx, nil, enums.OutputFormatShort, nil)
//	var apiErr *transport.APIError
//	if errors.As(err, &apiErr) {
//		// branch on well-known codes, e.g. 200 means the credentials
//		// became invalid and the user should log in again
//	}
//
// Practically all Ohmage calls return an object with a "result" element
// holding the status of the call and a "data" element holding the queried
// data; calls that write data typically return only "result".
//
// Handles are synchronous and not safe for concurrent use; create one handle
// per goroutine instead of sharing.
package clients
