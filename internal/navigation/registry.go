// Package navigation holds the navigation registry of the Spanish Vue.js
// documentation site: the sidebar map, navbar, head tags, theme options and
// plugin list handed to the host static-site generator.
//
// Build assembles a fresh record on every call. Nothing in the package keeps
// or mutates shared state, so callers may treat the result as read-only and
// build again whenever they need an independent copy.
package navigation

// Section prefixes of the sidebar map, in declaration order.
const (
	PrefixGuide     = "/guide/"
	PrefixCommunity = "/community/"
	PrefixCookbook  = "/cookbook/"
	PrefixAPI       = "/api/"
	PrefixExamples  = "/examples/"
)

// DeclaredPrefixes lists the top-level sections that own a sidebar.
func DeclaredPrefixes() []string {
	return []string{PrefixGuide, PrefixCommunity, PrefixCookbook, PrefixAPI, PrefixExamples}
}

// Build returns the site configuration.
func Build() *SiteConfig {
	// Community pages share the guide sections, each prefix with its own copy.
	sidebar := NewSidebar().
		Set(PrefixGuide, guideSidebar()...).
		Set(PrefixCommunity, guideSidebar()...).
		Set(PrefixCookbook, cookbookSidebar()...).
		Set(PrefixAPI, apiSidebar()...).
		Set(PrefixExamples, examplesSidebar()...)

	return &SiteConfig{
		Title:       "Vue.js",
		Description: "Vue.js - El Framework Progresivo de JavaScript",
		Head:        headTags(),
		ThemeConfig: ThemeConfig{
			Logo:         "/logo.png",
			Nav:          navbar(),
			Repo:         "vuejs/docs-next",
			EditLinks:    false,
			EditLinkText: "¡Edite esto en GitHub!",
			LastUpdated:  "Actualizado por última vez",
			DocsDir:      "src",
			SidebarDepth: 2,
			Sidebar:      sidebar,
			SmoothScroll: false,
			Algolia: Algolia{
				IndexName: "vuejs-v3",
				APIKey:    "bc6e8acb44ed4179c30d0a45d6140d3f",
			},
		},
		Plugins: []Plugin{
			{
				Name: "@vuepress/pwa",
				Options: PWAOptions{
					ServiceWorker: true,
					UpdatePopup: map[string]UpdatePopup{
						"/": {Message: "Nuevo contenido disponible.", ButtonText: "Actualizar"},
					},
				},
			},
			{
				Name: "vuepress-plugin-container",
				Options: ContainerOptions{
					Type:   "info",
					Before: `<div class="custom-block info"><p class="custom-block-title">{{info}}</p>`,
					After:  "</div>",
				},
			},
		},
		Markdown: MarkdownConfig{
			LineNumbers:   true,
			HighlightHook: "highlight",
		},
	}
}

func flag(v bool) *bool { return &v }

func pages(refs ...PageRef) []SidebarItem {
	items := make([]SidebarItem, 0, len(refs))
	for _, r := range refs {
		items = append(items, Page(r))
	}
	return items
}

func cookbookSidebar() []SidebarItem {
	return []SidebarItem{
		Group("Libro de Recetas", flag(false), pages(
			"/cookbook/",
			"/cookbook/editable-svg-icons",
		)...),
	}
}

func guideSidebar() []SidebarItem {
	advanced := []SidebarItem{
		Group("Reactividad", nil, pages(
			"/guide/reactivity",
			"/guide/reactivity-fundamentals",
			"/guide/reactivity-computed-watchers",
		)...),
		Group("API de Composición", nil, pages(
			"/guide/composition-api-introduction",
			"/guide/composition-api-setup",
			"/guide/composition-api-lifecycle-hooks",
			"/guide/composition-api-provide-inject",
			"/guide/composition-api-template-refs",
		)...),
	}
	advanced = append(advanced, pages("/guide/optimizations", "/guide/change-detection")...)

	return []SidebarItem{
		Group("Conocimientos Esenciales", flag(false), pages(
			"/guide/installation",
			"/guide/introduction",
			"/guide/instance",
			"/guide/template-syntax",
			"/guide/data-methods",
			"/guide/computed",
			"/guide/class-and-style",
			"/guide/conditional",
			"/guide/list",
			"/guide/events",
			"/guide/forms",
			"/guide/component-basics",
		)...),
		Group("Componentes en Profundidad", flag(false), pages(
			"/guide/component-registration",
			"/guide/component-props",
			"/guide/component-attrs",
			"/guide/component-custom-events",
			"/guide/component-slots",
			"/guide/component-provide-inject",
			"/guide/component-dynamic-async",
			"/guide/component-template-refs",
			"/guide/component-edge-cases",
		)...),
		Group("Transiciones & Animaciones", flag(false), pages(
			"/guide/transitions-overview",
			"/guide/transitions-enterleave",
			"/guide/transitions-list",
			"/guide/transitions-state",
		)...),
		Group("Reusabilidad & Composición", flag(false), pages(
			"/guide/mixins",
			"/guide/custom-directive",
			"/guide/teleport",
			"/guide/render-function",
			"/guide/plugins",
		)...),
		Group("Guías Avanzadas", flag(false), advanced...),
		Group("Herramientas", flag(false), pages(
			"/guide/single-file-component",
			"/guide/testing",
			"/guide/typescript-support",
			"/guide/mobile",
		)...),
		Group("Escalando la Aplicación", flag(false), pages(
			"/guide/routing",
			"/guide/state-management",
			"/guide/ssr",
		)...),
		Group("Accesibilidad", flag(false), pages(
			"/guide/a11y-basics",
			"/guide/a11y-semantics",
			"/guide/a11y-standards",
			"/guide/a11y-resources",
		)...),
		Group("Guía de Migración", flag(true), pages(
			"/guide/migration/introduction",
			"/guide/migration/array-refs",
			"/guide/migration/async-components",
			"/guide/migration/attribute-coercion",
			"/guide/migration/custom-directives",
			"/guide/migration/custom-elements-interop",
			"/guide/migration/data-option",
			"/guide/migration/events-api",
			"/guide/migration/filters",
			"/guide/migration/fragments",
			"/guide/migration/functional-components",
			"/guide/migration/global-api",
			"/guide/migration/global-api-treeshaking",
			"/guide/migration/inline-template-attribute",
			"/guide/migration/key-attribute",
			"/guide/migration/keycode-modifiers",
			"/guide/migration/props-default-this",
			"/guide/migration/render-function-api",
			"/guide/migration/slots-unification",
			"/guide/migration/transition",
			"/guide/migration/v-model",
			"/guide/migration/v-if-v-for",
			"/guide/migration/v-bind",
		)...),
		Group("Contribuya con la Documentación", flag(true), pages(
			"/guide/contributing/writing-guide",
			"/guide/contributing/doc-style-guide",
			"/guide/contributing/translations",
		)...),
	}
}

func apiSidebar() []SidebarItem {
	items := pages(
		"/api/application-config",
		"/api/application-api",
		"/api/global-api",
	)
	items = append(items, Group("Opciones", flag(false), pages(
		"/api/options-data",
		"/api/options-dom",
		"/api/options-lifecycle-hooks",
		"/api/options-assets",
		"/api/options-composition",
		"/api/options-misc",
	)...))
	items = append(items, pages(
		"/api/instance-properties",
		"/api/instance-methods",
		"/api/directives",
		"/api/special-attributes",
		"/api/built-in-components.md",
	)...)
	items = append(items, Group("API de Reactividad", flag(false), pages(
		"/api/basic-reactivity",
		"/api/refs-api",
		"/api/computed-watch-api",
	)...))
	return append(items, Page("/api/composition-api"))
}

func examplesSidebar() []SidebarItem {
	return []SidebarItem{
		Group("Ejemplos", flag(false), pages(
			"/examples/markdown",
			"/examples/commits",
			"/examples/grid-component",
			"/examples/tree-view",
			"/examples/svg",
			"/examples/modal",
			"/examples/elastic-header",
			"/examples/select2",
			"/examples/todomvc",
		)...),
	}
}

func link(attrs ...string) HeadTag { return tag("link", attrs...) }
func meta(attrs ...string) HeadTag { return tag("meta", attrs...) }

// tag builds a head tag from alternating key/value attribute pairs.
func tag(name string, kv ...string) HeadTag {
	h := HeadTag{Tag: name}
	for i := 0; i+1 < len(kv); i += 2 {
		h.Attrs = append(h.Attrs, Attr{Key: kv[i], Value: kv[i+1]})
	}
	return h
}

func headTags() []HeadTag {
	return []HeadTag{
		link("href", "https://fonts.googleapis.com/css?family=Inter:300,400,500,600|Open+Sans:400,600;display=swap", "rel", "stylesheet"),
		link("href", "https://stackpath.bootstrapcdn.com/font-awesome/4.7.0/css/font-awesome.min.css", "rel", "stylesheet"),
		link("rel", "icon", "href", "/logo.png"),
		link("rel", "manifest", "href", "/manifest.json"),
		meta("name", "theme-color", "content", "#3eaf7c"),
		meta("name", "apple-mobile-web-app-capable", "content", "yes"),
		meta("name", "apple-mobile-web-app-status-bar-style", "content", "black"),
		link("rel", "apple-touch-icon", "href", "/images/icons/apple-icon-152x152.png"),
		meta("name", "msapplication-TileImage", "content", "/images/icons/ms-icon-144x144.png"),
		meta("name", "msapplication-TileColor", "content", "#000000"),
		tag("script", "src", "https://player.vimeo.com/api/player.js"),
		tag("script", "src", "https://extend.vimeocdn.com/ga/72160148.js", "defer", "defer"),
	}
}

func navbar() []NavItem {
	return []NavItem{
		{
			Text:      "Documentación",
			AriaLabel: "Menú de Documentación",
			Items: []NavItem{
				{Text: "Guía", Link: "/guide/introduction"},
				{Text: "Guía de Migración", Link: "/guide/migration/introduction"},
				{Text: "Guía de Estilo", Link: "/style-guide/"},
				{Text: "Libro de Recetas", Link: "/cookbook/"},
				{Text: "Ejemplos", Link: "/examples/markdown"},
			},
		},
		{Text: "Referencia de la API", Link: "/api/application-config"},
		{
			Text: "Ecosistema",
			Items: []NavItem{
				{
					Text:      "Comunidad",
					AriaLabel: "Menú de Comunidad",
					Items: []NavItem{
						{Text: "Equipo", Link: "/community/team/"},
						{Text: "Socios", Link: "/community/partners"},
						{Text: "Únase", Link: "/community/join/"},
						{Text: "Temas", Link: "/community/themes/"},
					},
				},
				{
					Text: "Proyectos Oficiales",
					Items: []NavItem{
						{Text: "Vue Router", Link: "https://next.router.vuejs.org/"},
						{Text: "Vuex", Link: "https://vuex.vuejs.org/"},
						{Text: "Vue CLI", Link: "https://cli.vuejs.org/"},
						{Text: "Vue Test Utils", Link: "https://vuejs.github.io/vue-test-utils-next-docs/guide/introduction.html"},
						{Text: "Devtools", Link: "https://github.com/vuejs/vue-devtools"},
						{Text: "Noticias Semanales", Link: "https://news.vuejs.org/"},
					},
				},
			},
		},
		{
			Text: "Apoye Vue",
			Link: "/support-vuejs/",
			Items: []NavItem{
				{Text: "Donaciones Únicas", Link: "/support-vuejs/#one-time-donations"},
				{Text: "Compromisos Recurrentes", Link: "/support-vuejs/#recurring-pledges"},
				{Text: "Tienda de Camisetas", Link: "https://vue.threadless.com/"},
			},
		},
	}
}
