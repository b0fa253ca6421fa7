package relic

// Parse reads one expression from tokens, implementing the grammar:
//
//	Expr ::= "(" [SpecialForm] ListTail | "'" Expr | Number | Symbol
//	ListTail ::= ")"                     // nil
//	           | Expr ListTail           // cons onto the rest
//	           | Expr "." Expr ")"       // dotted pair
//
// A special form name in head position (`if`, `lambda`, `cond`, ...)
// becomes a NodeSpecialForm rather than a NodeSymbol, so the evaluator and
// compiler can dispatch on it directly instead of looking it up as a
// variable.
func Parse(l *Lexer) (*Node, error) {
	tok, err := l.Next()
	if err != nil {
		return nil, err
	}
	switch tok.Kind {
	case TokLParen:
		pos, peeked, err := l.PeekNextToken()
		_ = pos
		if err == nil && peeked.Kind == TokSymbol {
			if form, ok := LookupSpecialForm(peeked.Text); ok {
				if _, err := l.ConsumeSymbol(); err != nil {
					return nil, err
				}
				rest, err := parseListTail(l)
				if err != nil {
					return nil, err
				}
				return pairNode(specialFormNode(form), rest), nil
			}
		}
		return parseListTail(l)
	case TokQuote:
		inner, err := Parse(l)
		if err != nil {
			return nil, err
		}
		return pairNode(specialFormNode(FormQuote), pairNode(inner, nilNode)), nil
	case TokNumber:
		return numberNode(tok.Num), nil
	case TokSymbol:
		// A special form name outside head position is just a symbol with
		// that name — this is what lets a program quote or rebind e.g.
		// `if` as an ordinary value.
		return symbolNode(NewSymbol(tok.Text)), nil
	case TokString:
		return stringNode(tok.Text), nil
	case TokRParen:
		return nil, NewSyntaxError(l.Pos(), "unexpected \")\"")
	case TokDot:
		return nil, NewSyntaxError(l.Pos(), "unexpected \".\"")
	default:
		return nil, NewSyntaxError(l.Pos(), "unexpected token")
	}
}

// parseListTail parses ListTail above; the opening paren (and any leading
// special form) has already been consumed.
func parseListTail(l *Lexer) (*Node, error) {
	_, peeked, err := l.PeekNextToken()
	if err != nil {
		return nil, err
	}
	if peeked.Kind == TokRParen {
		if err := l.Consume(Token{Kind: TokRParen}); err != nil {
			return nil, err
		}
		return nilNode, nil
	}

	car, err := Parse(l)
	if err != nil {
		return nil, err
	}

	_, peeked, err = l.PeekNextToken()
	if err != nil {
		return nil, err
	}
	if peeked.Kind == TokDot {
		if err := l.Consume(Token{Kind: TokDot}); err != nil {
			return nil, err
		}
		cdr, err := Parse(l)
		if err != nil {
			return nil, err
		}
		if err := l.Consume(Token{Kind: TokRParen}); err != nil {
			return nil, err
		}
		return pairNode(car, cdr), nil
	}

	cdr, err := parseListTail(l)
	if err != nil {
		return nil, err
	}
	return pairNode(car, cdr), nil
}

// ParseProgram reads every top-level expression in src and wraps them in an
// implicit `(begin ...)`, matching the original `Node::from_str` behavior
// used to bootstrap a whole file or REPL paste as one form.
func ParseProgram(src string) (*Node, error) {
	l := NewLexer(src)
	var forms []*Node
	for {
		if _, _, err := l.PeekNextToken(); err == ErrEOF {
			return pairNode(specialFormNode(FormBegin), nodesToList(forms)), nil
		}
		n, err := Parse(l)
		if err != nil {
			return nil, err
		}
		forms = append(forms, n)
	}
}
