// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ast

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// Default parser limits.
const (
	// DefaultMaxFileSize is the default maximum source file size (10MB).
	DefaultMaxFileSize = 10 * 1024 * 1024

	// WarnFileSize is the size above which a warning is logged (1MB).
	WarnFileSize = 1 * 1024 * 1024
)

// JavaParserOption configures a JavaParser instance.
type JavaParserOption func(*JavaParser)

// WithJavaMaxFileSize sets the maximum file size the parser will accept.
func WithJavaMaxFileSize(bytes int64) JavaParserOption {
	return func(p *JavaParser) {
		if bytes > 0 {
			p.maxFileSize = bytes
		}
	}
}

// JavaParser extracts class symbols from Java source code.
//
// Description:
//
//	JavaParser uses tree-sitter to parse Java source files and extract the
//	class-level structure the wiring analysis consumes: declared types with
//	their kind, annotations, supertypes, fields, constructors and methods.
//	Method bodies are never inspected.
//
// Thread Safety:
//
//	JavaParser instances are safe for concurrent use. Each Parse call
//	creates its own tree-sitter parser instance internally.
//
// Example:
//
//	parser := ast.NewJavaParser()
//	result, err := parser.Parse(ctx, src, "com/shop/PaymentService.java")
//	if err != nil {
//	    return err
//	}
//	for _, cls := range result.Classes {
//	    fmt.Println(cls.QualifiedName, cls.Kind)
//	}
type JavaParser struct {
	maxFileSize int64
}

// NewJavaParser creates a new JavaParser with the given options.
func NewJavaParser(opts ...JavaParserOption) *JavaParser {
	p := &JavaParser{
		maxFileSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse extracts class symbols from Java source code.
//
// Description:
//
//	Parses the provided source and extracts every top-level class and
//	interface declaration into a ParseResult. The parser is error tolerant:
//	syntactically invalid files yield partial results with the problems
//	noted in ParseResult.Errors.
//
// Inputs:
//
//	ctx - Context for cancellation. Checked before and after the
//	      tree-sitter parse, which itself cannot be interrupted.
//	content - Raw Java source bytes. Must be valid UTF-8.
//	filePath - Path for reporting, relative to the project root.
//
// Outputs:
//
//	*ParseResult - Extracted classes and imports. Never nil on success.
//	error - ErrFileTooLarge, ErrInvalidContent, or a context error.
func (p *JavaParser) Parse(ctx context.Context, content []byte, filePath string) (*ParseResult, error) {
	ctx, span := startParseSpan(ctx, filePath, len(content))
	defer span.End()

	start := time.Now()

	if err := ctx.Err(); err != nil {
		recordParseMetrics(ctx, time.Since(start), 0, false)
		return nil, fmt.Errorf("parse canceled before start: %w", err)
	}

	if int64(len(content)) > p.maxFileSize {
		recordParseMetrics(ctx, time.Since(start), 0, false)
		return nil, fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, len(content), p.maxFileSize)
	}

	if len(content) > WarnFileSize {
		slog.Warn("parsing large file",
			slog.String("file", filePath),
			slog.Int("size_bytes", len(content)))
	}

	if !utf8.Valid(content) {
		recordParseMetrics(ctx, time.Since(start), 0, false)
		return nil, fmt.Errorf("%w: content is not valid UTF-8", ErrInvalidContent)
	}

	// New parser instance per call for thread safety.
	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		recordParseMetrics(ctx, time.Since(start), 0, false)
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	if err := ctx.Err(); err != nil {
		recordParseMetrics(ctx, time.Since(start), 0, false)
		return nil, fmt.Errorf("parse canceled after tree-sitter: %w", err)
	}

	result := &ParseResult{
		FilePath: filePath,
		Classes:  make([]*ClassSymbol, 0),
		Imports:  make([]Import, 0),
		Errors:   make([]string, 0),
	}

	root := tree.RootNode()
	if root == nil {
		result.Errors = append(result.Errors, "tree-sitter returned nil root node")
		return result, nil
	}
	if root.HasError() {
		result.Errors = append(result.Errors, "source contains syntax errors")
	}

	p.extractPackage(root, content, result)
	p.extractImports(root, content, result)
	p.extractTypes(root, content, result)

	recordParseMetrics(ctx, time.Since(start), len(result.Classes), true)
	setParseSpanResult(span, len(result.Classes), root.HasError())

	return result, nil
}

// extractPackage finds the package declaration, if any.
func (p *JavaParser) extractPackage(root *sitter.Node, content []byte, result *ParseResult) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() != "package_declaration" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			inner := child.NamedChild(j)
			switch inner.Type() {
			case "scoped_identifier", "identifier":
				result.Package = inner.Content(content)
				return
			}
		}
	}
}

// extractImports collects import declarations.
func (p *JavaParser) extractImports(root *sitter.Node, content []byte, result *ParseResult) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() != "import_declaration" {
			continue
		}
		text := strings.TrimSpace(child.Content(content))
		text = strings.TrimPrefix(text, "import")
		text = strings.TrimSuffix(strings.TrimSpace(text), ";")
		text = strings.TrimSpace(text)
		// Static imports never name injectable class types.
		if strings.HasPrefix(text, "static ") {
			continue
		}
		imp := Import{Path: text}
		if strings.HasSuffix(text, ".*") {
			imp.Path = strings.TrimSuffix(text, ".*")
			imp.Wildcard = true
		}
		result.Imports = append(result.Imports, imp)
	}
}

// extractTypes walks top-level class and interface declarations.
func (p *JavaParser) extractTypes(root *sitter.Node, content []byte, result *ParseResult) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "class_declaration":
			if cls := p.extractClass(child, content, result, false); cls != nil {
				result.Classes = append(result.Classes, cls)
			}
		case "interface_declaration":
			if cls := p.extractClass(child, content, result, true); cls != nil {
				result.Classes = append(result.Classes, cls)
			}
		}
	}
}

// extractClass converts one class or interface declaration node.
func (p *JavaParser) extractClass(node *sitter.Node, content []byte, result *ParseResult, isInterface bool) *ClassSymbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		result.Errors = append(result.Errors, "type declaration without a name")
		return nil
	}

	name := nameNode.Content(content)
	cls := &ClassSymbol{
		QualifiedName: qualify(result.Package, name),
		Name:          name,
		Package:       result.Package,
		Kind:          KindConcrete,
		FilePath:      result.FilePath,
		Line:          int(node.StartPoint().Row) + 1,
	}
	if isInterface {
		cls.Kind = KindInterface
	}

	mods := findChildOfType(node, "modifiers")
	cls.Annotations = p.extractAnnotations(mods, content)
	if !isInterface && modifiersContain(mods, content, "abstract") {
		cls.Kind = KindAbstract
	}

	p.extractSuperTypes(node, content, cls)

	body := node.ChildByFieldName("body")
	if body == nil {
		return cls
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		switch member.Type() {
		case "field_declaration":
			p.extractField(member, content, cls)
		case "constructor_declaration":
			p.extractConstructor(member, content, cls)
		case "method_declaration":
			p.extractMethod(member, content, cls)
		}
	}
	return cls
}

// extractSuperTypes records extends/implements references as written.
func (p *JavaParser) extractSuperTypes(node *sitter.Node, content []byte, cls *ClassSymbol) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "superclass":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				cls.SuperTypes = append(cls.SuperTypes, typeText(child.NamedChild(j), content))
			}
		case "super_interfaces", "extends_interfaces":
			list := findChildOfType(child, "type_list")
			if list == nil {
				continue
			}
			for j := 0; j < int(list.NamedChildCount()); j++ {
				cls.SuperTypes = append(cls.SuperTypes, typeText(list.NamedChild(j), content))
			}
		}
	}
}

// extractField converts one field declaration, which may declare several
// variables of the same type.
func (p *JavaParser) extractField(node *sitter.Node, content []byte, cls *ClassSymbol) {
	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return
	}
	annotations := p.extractAnnotations(findChildOfType(node, "modifiers"), content)
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "variable_declarator" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		cls.Fields = append(cls.Fields, FieldSymbol{
			Name:        nameNode.Content(content),
			TypeName:    typeText(typeNode, content),
			Annotations: annotations,
		})
	}
}

// extractConstructor converts one constructor declaration.
func (p *JavaParser) extractConstructor(node *sitter.Node, content []byte, cls *ClassSymbol) {
	ctor := ConstructorSymbol{
		Annotations: p.extractAnnotations(findChildOfType(node, "modifiers"), content),
		Params:      p.extractParams(node.ChildByFieldName("parameters"), content),
	}
	cls.Constructors = append(cls.Constructors, ctor)
}

// extractMethod converts one method declaration.
func (p *JavaParser) extractMethod(node *sitter.Node, content []byte, cls *ClassSymbol) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	typeNode := node.ChildByFieldName("type")
	m := MethodSymbol{
		Name:        nameNode.Content(content),
		Annotations: p.extractAnnotations(findChildOfType(node, "modifiers"), content),
		Params:      p.extractParams(node.ChildByFieldName("parameters"), content),
		ReturnsVoid: typeNode != nil && typeNode.Type() == "void_type",
	}
	cls.Methods = append(cls.Methods, m)
}

// extractParams converts a formal_parameters node.
func (p *JavaParser) extractParams(node *sitter.Node, content []byte) []ParamSymbol {
	if node == nil {
		return nil
	}
	var params []ParamSymbol
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "formal_parameter" && child.Type() != "spread_parameter" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		typeNode := child.ChildByFieldName("type")
		if nameNode == nil || typeNode == nil {
			continue
		}
		params = append(params, ParamSymbol{
			Name:        nameNode.Content(content),
			TypeName:    typeText(typeNode, content),
			Annotations: p.extractAnnotations(findChildOfType(child, "modifiers"), content),
		})
	}
	return params
}

// extractAnnotations collects annotation references from a modifiers node.
// A nil node yields nil.
func (p *JavaParser) extractAnnotations(mods *sitter.Node, content []byte) []AnnotationRef {
	if mods == nil {
		return nil
	}
	var refs []AnnotationRef
	for i := 0; i < int(mods.NamedChildCount()); i++ {
		child := mods.NamedChild(i)
		switch child.Type() {
		case "marker_annotation":
			nameNode := child.ChildByFieldName("name")
			if nameNode != nil {
				refs = append(refs, AnnotationRef{Name: nameNode.Content(content)})
			}
		case "annotation":
			if ref := p.extractAnnotationWithArgs(child, content); ref != nil {
				refs = append(refs, *ref)
			}
		}
	}
	return refs
}

// extractAnnotationWithArgs converts an annotation node carrying arguments.
func (p *JavaParser) extractAnnotationWithArgs(node *sitter.Node, content []byte) *AnnotationRef {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	ref := &AnnotationRef{Name: nameNode.Content(content)}

	args := node.ChildByFieldName("arguments")
	if args == nil {
		return ref
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		if arg.Type() == "element_value_pair" {
			keyNode := arg.ChildByFieldName("key")
			valNode := arg.ChildByFieldName("value")
			if keyNode == nil || valNode == nil {
				continue
			}
			if ref.Attrs == nil {
				ref.Attrs = make(map[string]AttrValue)
			}
			ref.Attrs[keyNode.Content(content)] = ParseAttrValue(valNode.Content(content))
			continue
		}
		// A lone argument is the implicit "value" attribute.
		if ref.Attrs == nil {
			ref.Attrs = make(map[string]AttrValue)
		}
		ref.Attrs["value"] = ParseAttrValue(arg.Content(content))
	}
	return ref
}

// typeText returns a type node's text with any generic arguments stripped:
// "List<PaymentService>" becomes "List".
func typeText(node *sitter.Node, content []byte) string {
	text := node.Content(content)
	if idx := strings.Index(text, "<"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// findChildOfType returns the first named child with the given node type.
func findChildOfType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == nodeType {
			return child
		}
	}
	return nil
}

// modifiersContain reports whether the modifiers node includes the given
// bare keyword (e.g. "abstract").
func modifiersContain(mods *sitter.Node, content []byte, keyword string) bool {
	if mods == nil {
		return false
	}
	for i := 0; i < int(mods.ChildCount()); i++ {
		if mods.Child(i).Content(content) == keyword {
			return true
		}
	}
	return false
}

// qualify joins a package and simple name.
func qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}
