package renderer

const lineVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;

uniform mat4 uViewProj;

void main() {
	gl_Position = uViewProj * vec4(aPos, 1.0);
}
`

const lineFragmentShader = `
#version 410 core

uniform vec4 uColor;
out vec4 FragColor;

void main() {
	FragColor = uColor;
}
`

// Instanced cylinders: per-vertex position and normal, per-instance model
// matrix in locations 2..5.
const instanceVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in mat4 aModel;

uniform mat4 uViewProj;

out vec3 vNormal;

void main() {
	vNormal = normalize(mat3(aModel) * aNormal);
	gl_Position = uViewProj * aModel * vec4(aPos, 1.0);
}
`

const instanceFragmentShader = `
#version 410 core

in vec3 vNormal;

uniform vec4 uColor;
uniform vec3 uLightDir;

out vec4 FragColor;

void main() {
	float diffuse = max(dot(normalize(vNormal), -uLightDir), 0.0);
	FragColor = vec4(uColor.rgb * (0.35 + 0.65 * diffuse), uColor.a);
}
`

// Screen-space textured quad for the tooltip. uRect is x, y, w, h in NDC.
const overlayVertexShader = `
#version 410 core

layout (location = 0) in vec2 aCorner;

uniform vec4 uRect;

out vec2 vUV;

void main() {
	vUV = vec2(aCorner.x, 1.0 - aCorner.y);
	gl_Position = vec4(uRect.xy + aCorner * uRect.zw, 0.0, 1.0);
}
`

const overlayFragmentShader = `
#version 410 core

in vec2 vUV;

uniform sampler2D uTexture;

out vec4 FragColor;

void main() {
	FragColor = texture(uTexture, vUV);
}
`
