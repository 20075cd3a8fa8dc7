/*
Package paddock is a three-step signup wizard: basic info, driver selection and summary.

A Wizard owns the state of one visitor's session. It keeps the current step, the
entered name and email, the driver picked from a remote racing-statistics API, and
the lists fetched from that API. Front-ends (the HTTP server and the terminal
runner) translate user input into Wizard calls and render its view models.

# Usage

	src := ergast.New(ergast.DefaultBaseURL)
	w := paddock.New(src)

	ctx := context.Background()
	w.Enter(ctx, "/basic-info", nil)
	_ = w.BasicInfo.UpdateField(domain.FieldName, "Ada")
	_ = w.BasicInfo.UpdateField(domain.FieldEmail, "ada@example.com")

	if nav, ok := w.Nav.Next(); ok {
		// Entering step 2 fetches the drivers list once.
		w.Enter(ctx, nav.Path, &nav.State)
	}

Sessions are persisted by a ports.StateStore (memory, file or Redis) through a
session.Manager, which serializes concurrent requests for the same session.
*/
package paddock
