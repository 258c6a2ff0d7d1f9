// Package demo is a small form application exercising modelbind: a
// DemoFormModel whose fields bind from the aliases foo, bar and baz, served
// from the query string, a form body and a JSON body.
package demo
