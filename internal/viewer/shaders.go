package viewer

// maxBones is the size of the skinning matrix uniform array. Humanoid
// rigs are well under this.
const maxBones = 96

const skinnedVertexShader = `#version 410 core
layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aTexCoord;
layout (location = 3) in vec4 aJoints;
layout (location = 4) in vec4 aWeights;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;
uniform mat4 uBones[96];

out vec3 vNormal;
out vec2 vTexCoord;
out float vViewDepth;

void main() {
    float weightSum = aWeights.x + aWeights.y + aWeights.z + aWeights.w;
    mat4 skin = mat4(1.0);
    if (weightSum > 0.0) {
        skin = aWeights.x * uBones[int(aJoints.x)] +
               aWeights.y * uBones[int(aJoints.y)] +
               aWeights.z * uBones[int(aJoints.z)] +
               aWeights.w * uBones[int(aJoints.w)];
    }

    vec4 world = uModel * skin * vec4(aPosition, 1.0);
    vNormal = mat3(uModel) * mat3(skin) * aNormal;
    vTexCoord = aTexCoord;

    vec4 view = uView * world;
    vViewDepth = -view.z;
    gl_Position = uProjection * view;
}
`

const skinnedFragmentShader = `#version 410 core
in vec3 vNormal;
in vec2 vTexCoord;
in float vViewDepth;

uniform vec4 uBaseColor;
uniform sampler2D uTexture;
uniform int uUseTexture;

uniform vec3 uLightDir;
uniform vec3 uSkyColor;
uniform vec3 uGroundColor;
uniform vec3 uDiffuse;

uniform vec3 uFogColor;
uniform float uFogNear;
uniform float uFogFar;

out vec4 FragColor;

void main() {
    vec3 normal = normalize(vNormal);

    float hemi = normal.y * 0.5 + 0.5;
    vec3 ambient = mix(uGroundColor, uSkyColor, hemi);
    float diff = max(dot(normal, normalize(uLightDir)), 0.0);

    vec4 base = uBaseColor;
    if (uUseTexture == 1) {
        base *= texture(uTexture, vTexCoord);
    }

    vec3 color = base.rgb * (ambient + diff * uDiffuse);

    float fog = clamp((vViewDepth - uFogNear) / (uFogFar - uFogNear), 0.0, 1.0);
    FragColor = vec4(mix(color, uFogColor, fog), base.a);
}
`

const flatVertexShader = `#version 410 core
layout (location = 0) in vec3 aPosition;

uniform mat4 uView;
uniform mat4 uProjection;

out float vViewDepth;

void main() {
    vec4 view = uView * vec4(aPosition, 1.0);
    vViewDepth = -view.z;
    gl_Position = uProjection * view;
}
`

const flatFragmentShader = `#version 410 core
in float vViewDepth;

uniform vec4 uColor;
uniform vec3 uFogColor;
uniform float uFogNear;
uniform float uFogFar;

out vec4 FragColor;

void main() {
    float fog = clamp((vViewDepth - uFogNear) / (uFogFar - uFogNear), 0.0, 1.0);
    FragColor = vec4(mix(uColor.rgb, uFogColor, fog), uColor.a);
}
`
