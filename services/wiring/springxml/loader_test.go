// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package springxml

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const springConfig = `<?xml version="1.0" encoding="UTF-8"?>
<beans xmlns="http://www.springframework.org/schema/beans"
       xmlns:context="http://www.springframework.org/schema/context">
    <context:component-scan base-package="com.shop, com.shop.legacy;com.billing"/>
    <bean id="legacyGateway" class="com.shop.legacy.LegacyGateway">
        <property name="timeout" value="30"/>
    </bean>
    <bean id="auditHook" class="com.shop.audit.AuditHook"/>
    <bean class="com.shop.NoIdBean"/>
</beans>`

func TestParse(t *testing.T) {
	t.Run("bean ids and scan packages", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, Parse([]byte(springConfig), registry))

		assert.Equal(t, []string{"auditHook", "legacyGateway"}, registry.BeanIDs())
		assert.True(t, registry.Exists("legacyGateway"))
		assert.False(t, registry.Exists("unknown"))

		assert.Equal(t, []string{"com.billing", "com.shop", "com.shop.legacy"}, registry.ScanPackages())
	})

	t.Run("non spring xml is skipped", func(t *testing.T) {
		registry := NewRegistry()
		err := Parse([]byte(`<project><bean id="nope"/></project>`), registry)
		assert.ErrorIs(t, err, ErrNotSpringConfig)
		assert.Empty(t, registry.BeanIDs())
	})

	t.Run("malformed xml is an error", func(t *testing.T) {
		registry := NewRegistry()
		err := Parse([]byte(`<beans xmlns="http://www.springframework.org/schema/beans"><bean`), registry)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotSpringConfig)
	})
}

func TestRegistry_InScannedPackage(t *testing.T) {
	registry := NewRegistry()
	registry.AddScanPackage("com.shop")

	assert.True(t, registry.InScannedPackage("com.shop"))
	assert.True(t, registry.InScannedPackage("com.shop.payment"))
	assert.False(t, registry.InScannedPackage("com.shopping"))
	assert.False(t, registry.InScannedPackage("org.other"))

	empty := NewRegistry()
	assert.False(t, empty.InScannedPackage("com.shop"))
}

func TestLoader_LoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spring-context.xml"), []byte(springConfig), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pom.xml"), []byte(`<project/>`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.xml"), []byte(`<beans xmlns="http://www.springframework.org/schema/beans"><bean`), 0o644))

	registry, err := NewLoader(nil).LoadDir(context.Background(), dir)
	require.NoError(t, err)

	assert.True(t, registry.Exists("legacyGateway"))
	assert.True(t, registry.Exists("auditHook"))
	assert.Len(t, registry.ScanPackages(), 3)
}
