// Package environment names the deployment environment the application runs in
// and carries it through context.Context.
//
// The environment decides how strict the document pipeline is: development
// builds fail loudly on programming errors such as a block kind without a
// style rule, production builds log a warning and degrade gracefully.
package environment
