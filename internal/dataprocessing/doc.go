// Package dataprocessing normalizes raw spreadsheet exports into typed
// campaign records and computes advertising performance metrics over them.
//
// The package is the computational core of the reporting backend. It is
// organized as a pipeline of pure stages:
//
//	RawTable -> Normalizer (per source schema) -> Reconcile (cross-source
//	merge) -> Apply (filter state) -> Aggregate (grouped metrics)
//
// Source tables are loosely typed: currency cells carry pt-BR formatting
// ("R$ 1.500,00"), dates arrive as DD/MM/YYYY or ISO, column names differ
// between tabs and some legacy tabs have no usable header at all. Cell
// parsing and column resolution absorb all of that; data-quality problems
// normalize to zero values or dropped rows and never abort a table.
//
// Every stage is side-effect free and deterministic: recomputing a view for
// a new filter state is just re-invoking Apply and Aggregate over the same
// snapshot of normalized records.
package dataprocessing
