// Package errors is MinnieML's structured-report error type: every
// phase returns accumulated Reports instead of panicking on bad user
// input (spec §3.6, §7).
package errors

// Error codes follow an XXX### taxonomy, one family per phase group
// named in spec §7.
const (
	// Parser errors (PAR###): lexing and recovery.
	PAR001 = "PAR001" // generic parse failure
	PAR002 = "PAR002" // unknown parse error
	PAR003 = "PAR003" // malformed member (ParsingMemberError)
	PAR004 = "PAR004" // invalid identifier lexeme (ParsingIdError)
	PAR005 = "PAR005" // unclosed block comment
	PAR006 = "PAR006" // term failed to parse (TermError)

	// Name / reference resolution errors (NAM###).
	NAM001 = "NAM001" // undefined reference
	NAM002 = "NAM002" // undefined type reference
	NAM003 = "NAM003" // duplicate name
	NAM004 = "NAM004" // invalid expression (wrapped InvalidExpression)
	NAM005 = "NAM005" // dangling terms after precedence climbing
	NAM006 = "NAM006" // member error reached a semantic phase
	NAM007 = "NAM007" // parsing-id error reached a semantic phase
	NAM008 = "NAM008" // invalid expression reached a later phase
	NAM009 = "NAM009" // invalid or missing entry point

	// Type resolution / type checking errors (TYP###).
	TYP001 = "TYP001" // missing parameter type
	TYP002 = "TYP002" // missing return type
	TYP003 = "TYP003" // recursive function missing return type
	TYP004 = "TYP004" // missing operator parameter type
	TYP005 = "TYP005" // missing operator return type
	TYP006 = "TYP006" // type mismatch
	TYP007 = "TYP007" // undersaturated application
	TYP008 = "TYP008" // oversaturated application
	TYP009 = "TYP009" // application of a non-function
	TYP010 = "TYP010" // invalid selection (base is not a struct)
	TYP011 = "TYP011" // unknown field
	TYP012 = "TYP012" // conditional branch type mismatch
	TYP013 = "TYP013" // conditional branch type unknown
	TYP014 = "TYP014" // unresolvable type
	TYP015 = "TYP015" // incompatible types
	TYP016 = "TYP016" // untyped hole in binding

	// Ownership analysis errors (OWN###).
	OWN001 = "OWN001" // use after move
	OWN002 = "OWN002" // consuming parameter is not the binding's last use
	OWN003 = "OWN003" // partial application of a function with a consuming parameter
	OWN004 = "OWN004" // conditional branches disagree on ownership state
	OWN005 = "OWN005" // borrowed parameter escapes via return
)
